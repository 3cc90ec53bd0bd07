package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorewood/icex/internal/diary"
)

const stubWelcome = `<html><head><meta name="csrf-token" content="tok-stub"></head>` +
	`<body><h1>开始使用网页版</h1><label>用户名 / Email</label></body></html>`

const stubProfile = `<html><body><h2>alice 的日记</h2></body></html>`

const stubPageOne = `<html><body><ul class="posts-list">
<li class="day-cut">1月1日 2024</li>
<li class="diary">
  <a class="timeago" href="/a/k3x9"><time class="hours" datetime="2024-01-01T09:15:00+08:00" title="2024-01-01 09:15">09:15</time></a>
  <h4><a href="/a/k3x9">New year</a></h4>
  <div class="comment">First entry of the year.</div>
  <span class="location"><i class="ico"></i> Hangzhou</span>
</li>
<li class="diary">
  <a class="timeago" href="/a/m7q2"><time class="hours" datetime="2024-01-01T18:40:00+08:00" title="2024-01-01 18:40">18:40</time></a>
  <div class="comment">Evening note.</div>
</li>
</ul></body></html>`

const stubPageTwo = `<html><body><ul class="posts-list">
<li class="day-cut">2月15日 2024</li>
<li class="diary">
  <a class="timeago" href="/a/p1aa"><time class="hours" datetime="2024-02-15T08:00:00+08:00" title="2024-02-15 08:00">08:00</time></a>
  <h4><a href="/a/p1aa">Morning walk</a></h4>
  <div class="comment">Cold but clear.</div>
</li>
</ul></body></html>`

const stubEmptyPage = `<html><body><ul class="posts-list"></ul></body></html>`

// newStubService serves a minimal two-page diary for alice.
func newStubService(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/welcome", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, stubWelcome)
	})
	mux.HandleFunc("/users/sign_in", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing sign-in form: %v", err)
		}
		http.SetCookie(w, &http.Cookie{Name: "_icity_session", Value: "stub", Path: "/"})
	})
	mux.HandleFunc("/u/alice", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, stubProfile)
	})
	mux.HandleFunc("/u/alice/posts", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			fmt.Fprint(w, stubPageOne)
		case "2":
			fmt.Fprint(w, stubPageTwo)
		default:
			fmt.Fprint(w, stubEmptyPage)
		}
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// isolateEnv points config at an empty directory and clears credential
// variables so the ambient environment cannot leak into a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ICEX_CONFIG_HOME", t.TempDir())
	t.Setenv("ICITY_USERNAME", "")
	t.Setenv("ICITY_PASSWORD", "")
}

// runCommand executes the root command with the given stdin and args.
func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExportProgressOnStderr(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ICITY_PASSWORD", "hunter2")
	server := newStubService(t)
	dir := t.TempDir()

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{
		"export",
		"--username", "alice",
		"--no-interactive",
		"--server", server.URL,
		"--output-dir", dir,
		"--prefix", "dump",
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("export: %v\n%s%s", err, out.String(), errOut.String())
	}

	for _, want := range []string{"Signing in as alice", "[page 1]", "[page 2]"} {
		if !strings.Contains(errOut.String(), want) {
			t.Errorf("stderr missing %q:\n%s", want, errOut.String())
		}
	}
	if strings.Contains(out.String(), "[page") {
		t.Errorf("progress leaked to stdout:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "exported 3 entries") {
		t.Errorf("summary should be on stdout:\n%s", out.String())
	}
}

func TestExportRequiresUsernameWithoutPrompts(t *testing.T) {
	isolateEnv(t)

	out, err := runCommand(t, "", "export", "--no-interactive")
	if err == nil {
		t.Fatal("expected an error without a username")
	}
	if !strings.Contains(out, "ICITY_USERNAME") {
		t.Errorf("error should point at the username sources:\n%s", out)
	}
}

func TestExportRequiresPasswordWithoutPrompts(t *testing.T) {
	isolateEnv(t)

	out, err := runCommand(t, "", "export", "--username", "alice", "--no-interactive")
	if err == nil {
		t.Fatal("expected an error without a password")
	}
	if !strings.Contains(out, "ICITY_PASSWORD") {
		t.Errorf("error should point at the password source:\n%s", out)
	}
}

func TestExportPipeline(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ICITY_PASSWORD", "hunter2")
	server := newStubService(t)
	dir := t.TempDir()

	_, err := runCommand(t, "",
		"export",
		"--username", "alice",
		"--no-interactive",
		"--server", server.URL,
		"--output-dir", dir,
		"--prefix", "dump")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	records, err := diary.ReadDump(filepath.Join(dir, "dump.json"))
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	if records[0].ID != "k3x9" || records[0].Location != "Hangzhou" {
		t.Errorf("unexpected first record: %+v", records[0])
	}

	text, err := os.ReadFile(filepath.Join(dir, "dump.txt"))
	if err != nil {
		t.Fatalf("reading text dump: %v", err)
	}
	if !strings.Contains(string(text), "Total entries: 3") {
		t.Errorf("text dump header wrong:\n%s", text)
	}

	for _, name := range []string{
		filepath.Join("dump_md", "2024", "01", "2024-01-01.md"),
		filepath.Join("dump_md", "2024", "02", "2024-02-15.md"),
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing markdown file %s: %v", name, err)
		}
	}
}

func TestExportJSONSummary(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ICITY_PASSWORD", "hunter2")
	server := newStubService(t)
	dir := t.TempDir()

	out, err := runCommand(t, "",
		"export", "--json",
		"--username", "alice",
		"--server", server.URL,
		"--output-dir", dir,
		"--prefix", "dump")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var result exportResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("summary is not JSON: %v\n%s", err, out)
	}
	if result.Total != 3 || result.MarkdownFiles != 2 {
		t.Errorf("summary = %+v", result)
	}
}

func TestExportNoMarkdown(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ICITY_PASSWORD", "hunter2")
	server := newStubService(t)
	dir := t.TempDir()

	_, err := runCommand(t, "",
		"export",
		"--username", "alice",
		"--no-interactive",
		"--no-markdown",
		"--server", server.URL,
		"--output-dir", dir,
		"--prefix", "dump")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "dump_md")); !os.IsNotExist(err) {
		t.Error("--no-markdown should skip the tree")
	}
}

func TestExportGuidedPrompts(t *testing.T) {
	isolateEnv(t)
	server := newStubService(t)
	dir := t.TempDir()

	// Answers: account, password, target (default), output dir, prefix
	// (default)
	stdin := strings.Join([]string{
		"alice",
		"hunter2",
		"",
		dir,
		"",
	}, "\n") + "\n"

	out, err := runCommand(t, stdin, "export", "--server", server.URL)
	if err != nil {
		t.Fatalf("guided export: %v\n%s", err, out)
	}

	// The Markdown question belongs to the bare guided run only.
	if strings.Contains(out, "Write per-day Markdown files?") {
		t.Errorf("export should not ask the Markdown question:\n%s", out)
	}

	dump := filepath.Join(dir, "icity_alice_diary_export.json")
	records, err := diary.ReadDump(dump)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("len = %d, want 3", len(records))
	}
	if strings.Contains(out, "hunter2") {
		t.Error("the password must never be echoed")
	}
}

func TestBareRootRunsGuidedExport(t *testing.T) {
	isolateEnv(t)
	server := newStubService(t)
	dir := t.TempDir()

	stdin := strings.Join([]string{"alice", "hunter2", "", dir, "", "n"}, "\n") + "\n"
	out, err := runCommand(t, stdin, "--server", server.URL)
	if err != nil {
		t.Fatalf("bare invocation: %v", err)
	}

	if !strings.Contains(out, "Write per-day Markdown files?") {
		t.Errorf("the guided run should ask about Markdown:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "icity_alice_diary_export.json")); err != nil {
		t.Errorf("bare invocation should export: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "icity_alice_diary_export_md")); !os.IsNotExist(err) {
		t.Error("answering no should skip the Markdown tree")
	}
}

func TestExportMaxPages(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ICITY_PASSWORD", "hunter2")
	server := newStubService(t)
	dir := t.TempDir()

	_, err := runCommand(t, "",
		"export",
		"--username", "alice",
		"--no-interactive",
		"--max-pages", "1",
		"--server", server.URL,
		"--output-dir", dir,
		"--prefix", "dump")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	records, err := diary.ReadDump(filepath.Join(dir, "dump.json"))
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("len = %d, want only page one's records", len(records))
	}
}
