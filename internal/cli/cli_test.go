package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// isolate keeps tests away from ~/.checklist and the caller's environment.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("CHECKLIST_CONFIG_DIR", t.TempDir())
	for _, k := range []string{"CHECKLIST_DIR", "CHECKLIST_FORMAT", "CHECKLIST_LOG_LEVEL", "CHECKLIST_AUTHOR", "CHECKLIST_AUTOSAVE_DEBOUNCE"} {
		t.Setenv(k, "")
	}
	return t.TempDir()
}

func mustRunner(t *testing.T, dir string) func(args ...string) map[string]any {
	return func(args ...string) map[string]any {
		t.Helper()
		full := append([]string{"--dir", dir, "--author", "qa"}, args...)
		stdout, stderr, err := runCLI(t, full)
		require.NoError(t, err, "checklist %v\nstderr:\n%s", args, stderr)
		var env map[string]any
		require.NoError(t, json.Unmarshal(stdout, &env), "stdout:\n%s", stdout)
		require.Contains(t, env, "data")
		return env
	}
}

func itemShape(t *testing.T, env map[string]any) string {
	t.Helper()
	data := env["data"].(map[string]any)
	var parts []string
	for _, raw := range data["items"].([]any) {
		it := raw.(map[string]any)
		s := it["title"].(string) + "@" + it["number"].(string)
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

func TestCLI_EditDiffPublish(t *testing.T) {
	dir := isolate(t)
	run := mustRunner(t, dir)

	created := run("templates", "create", "--name", "Bracket inspection", "--category", "incoming")
	require.EqualValues(t, 1, created["data"].(map[string]any)["id"])

	run("items", "add", "1", "--title", "P1")
	run("items", "add", "1", "--title", "P2")
	run("items", "add-sub", "1", "0", "--title", "C1", "--required")
	moved := run("items", "move", "1", "2", "0")
	require.Equal(t, "P2@1 P1@2 C1@2.1", itemShape(t, moved))

	list := run("items", "list", "1")
	items := list["data"].(map[string]any)["items"].([]any)
	c1 := items[2].(map[string]any)
	require.EqualValues(t, 2.1, c1["order_index"])
	require.EqualValues(t, 2, c1["parent_id"])
	require.Equal(t, true, c1["is_required"])

	diff := run("diff", "1")
	require.Equal(t, "0 field change(s), 3 item(s) added, 0 item(s) removed, 0 item(s) modified",
		diff["data"].(map[string]any)["summary"])

	rev := run("publish", "1")
	data := rev["data"].(map[string]any)
	require.EqualValues(t, 1, data["revision_number"])
	require.Equal(t, "1.1", data["version"])
	require.Equal(t, "qa", data["created_by"])

	_, stderr, err := runCLI(t, []string{"--dir", dir, "publish", "1"})
	require.Error(t, err)
	require.Contains(t, string(stderr), "nothing to publish")

	run("items", "update", "1", "1", "--title", "P1 renamed")
	run("items", "demote", "1", "1")
	after := run("items", "list", "1")
	require.Equal(t, "P2@1 P1 renamed@1.1 C1@1.2", itemShape(t, after))

	rev2 := run("publish", "1", "--description", "Nest P1", "--version", "2.0")
	require.Equal(t, "Nest P1", rev2["data"].(map[string]any)["description"])

	revs := run("revisions", "list", "1")
	require.Len(t, revs["data"].([]any), 2)
	shown := run("revisions", "show", "1", "2")
	require.Equal(t, "2.0", shown["data"].(map[string]any)["version"])

	evs := run("events", "--template", "1", "--limit", "0")
	var types []string
	for _, raw := range evs["data"].([]any) {
		types = append(types, raw.(map[string]any)["type"].(string))
	}
	require.Equal(t, []string{
		"template.create", "item.add", "item.add", "item.add-sub", "item.move",
		"template.publish", "item.update", "item.demote", "template.publish",
	}, types)
}

func TestCLI_ItemErrors(t *testing.T) {
	dir := isolate(t)
	run := mustRunner(t, dir)
	run("templates", "create", "--name", "T")
	run("items", "add", "1", "--title", "Only")

	cases := []struct {
		args []string
		want string
	}{
		{[]string{"items", "remove", "1", "x"}, `invalid index: "x"`},
		{[]string{"items", "remove", "abc", "0"}, `invalid template id: "abc"`},
		{[]string{"items", "demote", "1", "0"}, "no parent item above"},
		{[]string{"items", "remove", "1", "5"}, "remove: index 5 out of range (items: 1)"},
		{[]string{"items", "update", "1", "0"}, "nothing to update"},
		{[]string{"items", "list", "9"}, "template not found"},
	}
	for _, tc := range cases {
		_, stderr, err := runCLI(t, append([]string{"--dir", dir}, tc.args...))
		require.Error(t, err, "%v", tc.args)
		require.Contains(t, string(stderr), tc.want, "%v", tc.args)
	}
}

func TestCLI_ImportNestedYAMLAndRender(t *testing.T) {
	dir := isolate(t)
	run := mustRunner(t, dir)

	src := filepath.Join(t.TempDir(), "weld.yaml")
	require.NoError(t, os.WriteFile(src, []byte(`
name: Weld inspection
items:
  - title: Bead
    is_required: "yes"
    children:
      - title: Porosity
      - title: Undercut
  - title: Paint
`), 0o644))

	imported := run("templates", "import", src)
	tpl := imported["data"].(map[string]any)
	require.Equal(t, "Weld inspection", tpl["name"])
	require.Len(t, tpl["items"], 4)

	list := run("items", "list", "1")
	require.Equal(t, "Bead@1 Porosity@1.1 Undercut@1.2 Paint@2", itemShape(t, list))

	nested := run("templates", "show", "1", "--draft", "--nested")
	top := nested["data"].(map[string]any)["items"].([]any)
	require.Len(t, top, 2)
	bead := top[0].(map[string]any)
	require.Equal(t, "Bead", bead["title"])
	require.Len(t, bead["children"], 2)
	require.NotContains(t, top[1].(map[string]any), "children")

	stdout, stderr, err := runCLI(t, []string{"--dir", dir, "render", "1"})
	require.NoError(t, err, "stderr:\n%s", stderr)
	require.Contains(t, string(stdout), "- [ ] **1.2** Undercut")

	stdout, _, err = runCLI(t, []string{"--dir", dir, "render", "1", "--as", "html"})
	require.NoError(t, err)
	require.Contains(t, string(stdout), "<title>Weld inspection</title>")

	out := t.TempDir()
	exported := run("templates", "export", "1", "--to", out, "--html")
	require.Len(t, exported["data"].(map[string]any)["written"], 2)
	_, err = os.Stat(filepath.Join(out, "templates", "1-weld-inspection.md"))
	require.NoError(t, err)
}

func TestCLI_ImportFlatJSONList(t *testing.T) {
	dir := isolate(t)
	run := mustRunner(t, dir)

	src := filepath.Join(t.TempDir(), "flat.json")
	require.NoError(t, os.WriteFile(src, []byte(`[
		{"title": "Orphan child", "level": 1, "parent_id": 9, "order_index": 9.1},
		{"title": "Parent", "level": 0, "order_index": 4}
	]`), 0o644))

	run("templates", "import", src, "--name", "Flat")
	list := run("items", "list", "1")
	require.Equal(t, "Orphan child@1 Parent@2", itemShape(t, list))
}

func TestCLI_YAMLOutputAndDelete(t *testing.T) {
	dir := isolate(t)
	run := mustRunner(t, dir)
	run("templates", "create", "--name", "A")

	stdout, stderr, err := runCLI(t, []string{"--dir", dir, "--format", "yaml", "templates", "list"})
	require.NoError(t, err, "stderr:\n%s", stderr)
	require.True(t, strings.HasPrefix(string(stdout), "data:\n"), "got:\n%s", stdout)
	require.Contains(t, string(stdout), "name: A")

	_, stderr, err = runCLI(t, []string{"--dir", dir, "--format", "edn", "templates", "list"})
	require.Error(t, err)
	require.Contains(t, string(stderr), "unknown format")

	run("templates", "delete", "1")
	listed := run("templates", "list")
	require.Empty(t, listed["data"])
}

func TestCLI_Docs(t *testing.T) {
	dir := isolate(t)
	run := mustRunner(t, dir)

	topics := run("docs")
	require.Contains(t, topics["data"], "numbering")

	stdout, _, err := runCLI(t, []string{"--dir", dir, "docs", "numbering", "--raw"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(stdout), "# Numbering"))

	_, stderr, err := runCLI(t, []string{"--dir", dir, "docs", "nope"})
	require.Error(t, err)
	require.Contains(t, string(stderr), "unknown topic: nope")
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	dir := isolate(t)
	run := mustRunner(t, dir)

	set := run("config", "set", "autosave_debounce", "250ms")
	require.Equal(t, "250ms", set["data"].(map[string]any)["config"].(map[string]any)["autosave_debounce"])

	run("config", "set", "author", "inspector")
	shown := run("config", "show")
	cfg := shown["data"].(map[string]any)["config"].(map[string]any)
	require.Equal(t, "inspector", cfg["author"])
	require.Equal(t, "250ms", cfg["autosave_debounce"])

	b, err := os.ReadFile(shown["data"].(map[string]any)["path"].(string))
	require.NoError(t, err)
	require.Contains(t, string(b), "author: inspector")

	_, stderr, err := runCLI(t, []string{"--dir", dir, "config", "set", "colour", "red"})
	require.Error(t, err)
	require.Contains(t, string(stderr), "unknown config key: colour")
}
