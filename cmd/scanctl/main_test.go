package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

const recordsOK = `{"records":[{"_status":{"code":200},"_objects":[%s]}]}`

func runCLI(t *testing.T, args []string) (string, string, error) {
	t.Helper()
	// Keep a developer's .env or shell from leaking into the run.
	t.Chdir(t.TempDir())
	t.Setenv("SCANVAULT_SERVER", "")
	t.Setenv("SCANVAULT_RECOGNITION_URL", "")
	t.Setenv("SCANVAULT_RECOGNITION_TOKEN", "")
	t.Setenv("SCANVAULT_LANG", "")

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "card.jpg")
	if err := os.WriteFile(path, bytes.Repeat([]byte{0xff, 0xd8, 0x42}, 200), 0o600); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return path
}

func objects(objs ...string) string {
	return strings.Replace(recordsOK, "%s", strings.Join(objs, ","), 1)
}

// recognitionServer identifies every image as a Pokemon card.
func recognitionServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/collectibles/v2/process":
			_, _ = w.Write([]byte(objects(`{"name":"Card","_tags":{"Subcategory":[{"name":"Pokemon"}]}}`)))
		case "/collectibles/v2/tcg_id":
			_, _ = w.Write([]byte(objects(`{"name":"Card","_identification":{"best_match":{"name":"Pikachu","year":1999,"set":"Base Set","pricing":{"list":[{"price":10},{"price":20},{"price":30}]}}}}`)))
		case "/card-grader/v2/grade":
			_, _ = w.Write([]byte(`{"records":[{"grades":{"corners":9.5,"edges":9,"surface":8.5,"final":9,"condition":"Mint"}}]}`))
		case "/card-grader/v2/condition":
			_, _ = w.Write([]byte(`{"records":[{"Condition":[{"label":"Near Mint","scale_value":8,"max_scale_value":10,"mode":"psa"}]}]}`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestIdentifyCommand(t *testing.T) {
	server := recognitionServer(t)
	image := writeImage(t)

	stdout, _, err := runCLI(t, []string{"identify", "--recognition-url", server.URL, "--token", "secret", image})
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	for _, want := range []string{"Pikachu", "1999", "Base Set", "$20.00", "tcg_id"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestIdentifyCommandJSON(t *testing.T) {
	server := recognitionServer(t)
	image := writeImage(t)

	stdout, _, err := runCLI(t, []string{"identify", "--json", "--recognition-url", server.URL, "--token", "secret", image})
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	var out struct {
		Identified bool   `json:"identified"`
		Strategy   string `json:"strategy"`
		Card       struct {
			Name string `json:"name"`
		} `json:"card"`
		Steps []json.RawMessage `json:"steps"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout)
	}
	if !out.Identified || out.Card.Name != "Pikachu" || out.Strategy != "tcg_id" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if len(out.Steps) == 0 {
		t.Fatal("expected step traces")
	}
}

func TestIdentifyCommandTokenFromEnvironment(t *testing.T) {
	server := recognitionServer(t)
	image := writeImage(t)

	t.Chdir(t.TempDir())
	if err := os.WriteFile(".env", []byte("SCANVAULT_RECOGNITION_TOKEN=secret\nSCANVAULT_RECOGNITION_URL="+server.URL+"\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	for _, key := range []string{"SCANVAULT_RECOGNITION_TOKEN", "SCANVAULT_RECOGNITION_URL"} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}

	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"identify", image})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("identify: %v", err)
	}
	if !strings.Contains(stdout.String(), "Pikachu") {
		t.Fatalf("expected identification, got:\n%s", stdout.String())
	}
}

func TestIdentifyCommandWithoutTokenFails(t *testing.T) {
	server := recognitionServer(t)
	image := writeImage(t)

	_, _, err := runCLI(t, []string{"identify", "--recognition-url", server.URL, image})
	if err == nil {
		t.Fatal("expected configuration error without a token")
	}
}

func TestIdentifyCommandMissingFile(t *testing.T) {
	_, _, err := runCLI(t, []string{"identify", "--token", "secret", filepath.Join(t.TempDir(), "nope.jpg")})
	if err == nil || !strings.Contains(err.Error(), "read image") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestGradeCommand(t *testing.T) {
	server := recognitionServer(t)
	image := writeImage(t)

	stdout, _, err := runCLI(t, []string{"grade", "--recognition-url", server.URL, "--token", "secret", "--mode", "PSA", image})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	for _, want := range []string{"corners", "9.5", "Near Mint", "8/10", "centering failed"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestGradeCommandRejectsUnknownMode(t *testing.T) {
	server := recognitionServer(t)
	image := writeImage(t)

	_, _, err := runCLI(t, []string{"grade", "--recognition-url", server.URL, "--token", "secret", "--mode", "gold", image})
	if err == nil {
		t.Fatal("expected invalid mode error")
	}
}

// apiServer fakes the export and token endpoints of a ScanVault server.
func apiServer(t *testing.T) *httptest.Server {
	t.Helper()
	var token string
	var cards []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/cards" && r.Method == http.MethodPost:
			var card map[string]any
			_ = json.NewDecoder(r.Body).Decode(&card)
			card["id"] = "card-" + strconv.Itoa(len(cards)+1)
			card["dateAdded"] = "2026-01-02T03:04:05Z"
			cards = append(cards, card)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(card)
		case r.URL.Path == "/api/cards" && r.Method == http.MethodGet:
			out := []map[string]any{}
			for _, c := range cards {
				name, _ := c["name"].(string)
				if q := r.URL.Query().Get("q"); q == "" || strings.Contains(strings.ToLower(name), strings.ToLower(q)) {
					out = append(out, c)
				}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"cards": out, "total": len(out)})
		case r.URL.Path == "/api/export.csv" && r.Method == http.MethodGet:
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="scanvault_collection_20260101_120000.csv"`)
			_, _ = w.Write([]byte("Name,Year\nPikachu,1999\n"))
		case r.URL.Path == "/api/settings/token" && r.Method == http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			if token == "" {
				_, _ = w.Write([]byte(`{"configured":false,"source":"none"}`))
				return
			}
			_, _ = w.Write([]byte(`{"configured":true,"source":"runtime","masked":"****` + token[len(token)-4:] + `"}`))
		case r.URL.Path == "/api/settings/token" && r.Method == http.MethodPut:
			var req struct {
				Token string `json:"token"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Token == "" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid input: token must not be empty"}`))
				return
			}
			token = req.Token
			_, _ = w.Write([]byte(`{"configured":true,"source":"runtime","masked":"****` + token[len(token)-4:] + `"}`))
		case r.URL.Path == "/api/settings/token" && r.Method == http.MethodDelete:
			token = ""
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestExportCommandToStdout(t *testing.T) {
	server := apiServer(t)

	stdout, _, err := runCLI(t, []string{"export", "--server", server.URL, "-o", "-"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if stdout != "Name,Year\nPikachu,1999\n" {
		t.Fatalf("unexpected csv: %q", stdout)
	}
}

func TestExportCommandToDirectory(t *testing.T) {
	server := apiServer(t)
	dir := t.TempDir()

	_, stderr, err := runCLI(t, []string{"export", "--server", server.URL, "-o", dir})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	path := filepath.Join(dir, "scanvault_collection_20260101_120000.csv")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "Name,Year") {
		t.Fatalf("unexpected file content: %q", data)
	}
	if !strings.Contains(stderr, path) {
		t.Fatalf("expected path in stderr, got %q", stderr)
	}
}

func TestTokenCommands(t *testing.T) {
	server := apiServer(t)

	stdout, _, err := runCLI(t, []string{"token", "show", "--server", server.URL})
	if err != nil {
		t.Fatalf("token show: %v", err)
	}
	if !strings.Contains(stdout, "No recognition token") {
		t.Fatalf("unexpected show output: %q", stdout)
	}

	stdout, _, err = runCLI(t, []string{"token", "set", "--server", server.URL, "abcd1234"})
	if err != nil {
		t.Fatalf("token set: %v", err)
	}
	if !strings.Contains(stdout, "****1234") || strings.Contains(stdout, "abcd1234") {
		t.Fatalf("unexpected set output: %q", stdout)
	}

	stdout, _, err = runCLI(t, []string{"token", "show", "--json", "--server", server.URL})
	if err != nil {
		t.Fatalf("token show json: %v", err)
	}
	var status tokenStatus
	if err := json.Unmarshal([]byte(stdout), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Configured || status.Source != "runtime" {
		t.Fatalf("unexpected status: %+v", status)
	}

	if _, _, err := runCLI(t, []string{"token", "clear", "--server", server.URL}); err != nil {
		t.Fatalf("token clear: %v", err)
	}
}

func TestTokenSetFromStdin(t *testing.T) {
	server := apiServer(t)

	t.Chdir(t.TempDir())
	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("  zzzz9876\n"))
	cmd.SetArgs([]string{"token", "set", "--server", server.URL})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("token set: %v", err)
	}
	if !strings.Contains(stdout.String(), "****9876") {
		t.Fatalf("unexpected output: %q", stdout.String())
	}
}

func TestServerErrorSurfaces(t *testing.T) {
	server := apiServer(t)

	_, _, err := runCLI(t, []string{"token", "set", "--server", server.URL, "   "})
	if err == nil || !strings.Contains(err.Error(), "must not be empty") {
		t.Fatalf("expected empty token error, got %v", err)
	}

	_, _, err = runCLI(t, []string{"export", "--server", server.URL + "/missing", "-o", "-"})
	apiErr, ok := err.(*apiError)
	if !ok || apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 api error, got %v", err)
	}
}

func TestAttachmentNameFallback(t *testing.T) {
	timeNow = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	t.Cleanup(func() { timeNow = time.Now })

	if got := attachmentName(""); got != "scanvault_collection_20260304_050607.csv" {
		t.Fatalf("unexpected fallback name %q", got)
	}
	if got := attachmentName(`attachment; filename="../../etc/passwd"`); got != "passwd" {
		t.Fatalf("expected base name, got %q", got)
	}
}

func TestIdentifySaveAndListCards(t *testing.T) {
	recognition := recognitionServer(t)
	server := apiServer(t)
	image := writeImage(t)

	_, stderr, err := runCLI(t, []string{"identify", "--save",
		"--server", server.URL, "--recognition-url", recognition.URL, "--token", "secret", image})
	if err != nil {
		t.Fatalf("identify --save: %v", err)
	}
	if !strings.Contains(stderr, "Saved card card-1") {
		t.Fatalf("expected save confirmation, got %q", stderr)
	}

	stdout, _, err := runCLI(t, []string{"cards", "--server", server.URL, "-q", "pika"})
	if err != nil {
		t.Fatalf("cards: %v", err)
	}
	for _, want := range []string{"Pikachu", "Base Set", "20.00", "2026-01-02", "1 cards"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout)
		}
	}

	stdout, _, err = runCLI(t, []string{"cards", "--server", server.URL, "-q", "charizard"})
	if err != nil {
		t.Fatalf("cards: %v", err)
	}
	if !strings.Contains(stdout, "0 cards") {
		t.Fatalf("expected empty listing, got:\n%s", stdout)
	}
}
