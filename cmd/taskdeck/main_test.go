package main

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"

	"taskdeck/internal/cli"
)

func TestRewriteDirectTaskLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"taskdeck"},
			want: []string{"taskdeck"},
		},
		{
			name: "direct task id first token",
			in:   []string{"taskdeck", "12"},
			want: []string{"taskdeck", "tasks", "show", "12"},
		},
		{
			name: "hash prefixed id",
			in:   []string{"taskdeck", "#12"},
			want: []string{"taskdeck", "tasks", "show", "#12"},
		},
		{
			name: "direct task id after value flag",
			in:   []string{"taskdeck", "--api", "http://localhost:9000/api", "12"},
			want: []string{"taskdeck", "--api", "http://localhost:9000/api", "tasks", "show", "12"},
		},
		{
			name: "direct task id after equals flag",
			in:   []string{"taskdeck", "--format=text", "12"},
			want: []string{"taskdeck", "--format=text", "tasks", "show", "12"},
		},
		{
			name: "direct task id after bool flag",
			in:   []string{"taskdeck", "--mock", "12"},
			want: []string{"taskdeck", "--mock", "tasks", "show", "12"},
		},
		{
			name: "direct task id after double dash",
			in:   []string{"taskdeck", "--lang", "fr", "--", "12"},
			want: []string{"taskdeck", "--lang", "fr", "tasks", "show", "12"},
		},
		{
			name: "numeric flag value is not an id",
			in:   []string{"taskdeck", "--log-level", "1"},
			want: []string{"taskdeck", "--log-level", "1"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"taskdeck", "tasks", "show", "12"},
			want: []string{"taskdeck", "tasks", "show", "12"},
		},
		{
			name: "zero is not an id",
			in:   []string{"taskdeck", "0"},
			want: []string{"taskdeck", "0"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"taskdeck", "wat"},
			want: []string{"taskdeck", "wat"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectTaskLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectTaskLookupArgs(%v) = %v; want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRewrittenArgsShowTask(t *testing.T) {
	t.Setenv("TASKDECK_CONFIG_DIR", t.TempDir())
	t.Setenv("TASKDECK_API_MOCK_LATENCY", "0s")

	for _, argv := range [][]string{
		{"taskdeck", "--mock", "1"},
		{"taskdeck", "--mock", "--", "1"},
		{"taskdeck", "--mock", "--log-level", "error", "--", "#1"},
	} {
		args := rewriteDirectTaskLookupArgs(argv)

		cmd := cli.NewRootCmd()
		var out, errOut bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)
		cmd.SetArgs(args[1:])
		if err := cmd.Execute(); err != nil {
			t.Fatalf("%v: %v\nstderr:\n%s", argv, err, errOut.String())
		}

		var env struct {
			Data struct {
				ID    int64  `json:"id"`
				Title string `json:"title"`
			} `json:"data"`
		}
		if err := json.Unmarshal(out.Bytes(), &env); err != nil {
			t.Fatalf("%v: expected task JSON, got:\n%s", argv, out.String())
		}
		if env.Data.ID != 1 || env.Data.Title == "" {
			t.Fatalf("%v: unexpected task %+v", argv, env.Data)
		}
	}
}
