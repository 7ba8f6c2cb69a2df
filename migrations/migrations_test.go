package migrations

import "testing"

func TestUpAndDownPair(t *testing.T) {
	up, down := Up(), Down()
	if len(up) == 0 || len(up) != len(down) {
		t.Fatalf("up=%v down=%v", up, down)
	}
	for i, name := range up {
		want := name[:len(name)-len(".sql")] + ".down.sql"
		if got := down[len(down)-1-i]; got != want {
			t.Errorf("revert for %s = %s, want %s", name, got, want)
		}
		if b, err := Read(name); err != nil || len(b) == 0 {
			t.Errorf("read %s: %v", name, err)
		}
	}
}
