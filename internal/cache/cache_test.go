package cache

import "testing"

func TestKeyIsDeterministic(t *testing.T) {
	a := Key("+++", "identity,arithmetic", "c89")
	b := Key("+++", "identity,arithmetic", "c89")
	if a != b {
		t.Fatalf("expected deterministic digest, got %s vs %s", a, b)
	}
}

func TestKeyDistinguishesInputs(t *testing.T) {
	a := Key("+++", "identity", "c89")
	b := Key("+++", "identity", "lua51")
	if a == b {
		t.Fatal("expected different targets to produce different digests")
	}
}

func TestDriverForDSN(t *testing.T) {
	cases := map[string]string{
		"postgres://localhost/db": "postgres",
		"mysql://localhost/db":    "mysql",
		"sqlserver://localhost":   "sqlserver",
		"sqlite://cache.db":       "sqlite",
		"/tmp/cache.db":           "sqlite",
	}
	for dsn, want := range cases {
		driver, _ := driverFor(dsn)
		if driver != want {
			t.Errorf("driverFor(%q) = %q, want %q", dsn, driver, want)
		}
	}
}
