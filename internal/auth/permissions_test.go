package auth

import "testing"

func TestRequiredRolesForAPI(t *testing.T) {
	cases := []struct {
		name          string
		path          string
		method        string
		wantEmployee  bool
	}{
		{name: "orders open to staff", path: "/orders/12/payment", method: "POST", wantEmployee: true},
		{name: "order items open to staff", path: "/order-items/4", method: "DELETE", wantEmployee: true},
		{name: "table reads open to staff", path: "/dining-tables", method: "GET", wantEmployee: true},
		{name: "table writes admin only", path: "/dining-tables/3", method: "PUT", wantEmployee: false},
		{name: "catalog reads open to staff", path: "/food-items", method: "GET", wantEmployee: true},
		{name: "catalog writes admin only", path: "/food-items/9", method: "DELETE", wantEmployee: false},
		{name: "employees admin only", path: "/employees", method: "GET", wantEmployee: false},
		{name: "reservation management admin only", path: "/reservations/7/status", method: "PUT", wantEmployee: false},
		{name: "unknown path defaults to admin", path: "/settings", method: "GET", wantEmployee: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			roles := RequiredRolesForAPI(tc.path, tc.method)
			if !RoleAllowed(RoleAdmin, roles) {
				t.Fatalf("admin must always be allowed on %s %s", tc.method, tc.path)
			}
			if got := RoleAllowed(RoleEmployee, roles); got != tc.wantEmployee {
				t.Fatalf("employee allowed = %v, want %v for %s %s", got, tc.wantEmployee, tc.method, tc.path)
			}
		})
	}
}

func TestParseBearerToken(t *testing.T) {
	if got := ParseBearerToken("Bearer abc.def.ghi"); got != "abc.def.ghi" {
		t.Fatalf("expected token, got %q", got)
	}
	if got := ParseBearerToken("bearer xyz"); got != "xyz" {
		t.Fatalf("scheme should be case-insensitive, got %q", got)
	}
	if got := ParseBearerToken("Basic xyz"); got != "" {
		t.Fatalf("expected empty for non-bearer, got %q", got)
	}
	if got := ParseBearerToken(""); got != "" {
		t.Fatalf("expected empty for missing header, got %q", got)
	}
}
