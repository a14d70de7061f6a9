package main

import (
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"testing"
)

func TestParseOptions(t *testing.T) {
	t.Setenv(envDSN, "")

	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, o options)
	}{
		{
			name: "up with default dsn",
			args: []string{"-up"},
			check: func(t *testing.T, o options) {
				if !o.up || o.dsn != defaultDSN {
					t.Errorf("options = %+v", o)
				}
			},
		},
		{
			name: "force zero is honored",
			args: []string{"-force", "0"},
			check: func(t *testing.T, o options) {
				if !o.forceSet || o.force != 0 {
					t.Errorf("force = %d set = %v", o.force, o.forceSet)
				}
			},
		},
		{name: "no action", args: nil, wantErr: true},
		{name: "two actions", args: []string{"-up", "-version"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := parseOptions(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, o)
		})
	}
}

func TestParseOptionsEnvDSN(t *testing.T) {
	t.Setenv(envDSN, "postgres://env")
	o, err := parseOptions([]string{"-version"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.dsn != "postgres://env" {
		t.Errorf("dsn = %q, want env value", o.dsn)
	}
}

func TestMigrationsPaired(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		t.Fatal(err)
	}

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, f := range files {
		switch {
		case strings.HasSuffix(f, ".up.sql"):
			ups[strings.TrimSuffix(f, ".up.sql")] = true
		case strings.HasSuffix(f, ".down.sql"):
			downs[strings.TrimSuffix(f, ".down.sql")] = true
		}
	}

	if len(ups) == 0 {
		t.Fatal("no migrations embedded")
	}
	for name := range ups {
		if !downs[name] {
			t.Errorf("%s has no down migration", name)
		}
	}
}

func TestMigrationsSequential(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.up.sql")
	if err != nil {
		t.Fatal(err)
	}
	slices.Sort(files)

	for i, f := range files {
		want := fmt.Sprintf("migrations/%06d_", i+1)
		if !strings.HasPrefix(f, want) {
			t.Errorf("migration %d = %s, want prefix %s", i+1, f, want)
		}
	}
	if len(files) < 2 {
		t.Errorf("embedded %d up migrations, want the comments migration included", len(files))
	}
}
