package cli

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/alnah/raindrip/internal/apierr"
	"github.com/alnah/raindrip/internal/config"
	"github.com/alnah/raindrip/internal/raindrop"
)

const (
	userBody        = `{"result":true,"user":{"_id":42,"fullName":"Ada Lovelace","pro":true}}`
	statsBody       = `{"result":true,"items":[{"_id":0,"count":120},{"_id":-1,"count":7}]}`
	collectionsBody = `{"result":true,"items":[
		{"_id":10,"title":"Go","count":30,"lastUpdate":"2025-01-02T00:00:00Z"},
		{"_id":11,"title":"Machine Learning","count":5,"parent":{"$id":10}},
		{"_id":12,"title":"Recipes","count":2}
	]}`
	tagsBody      = `{"result":true,"items":[{"_id":"go","count":3},{"_id":"cli","count":1}]}`
	raindropsBody = `{"result":true,"items":[
		{"_id":1,"title":"Go","link":"https://go.dev","tags":["go","cli"],"created":"2025-03-01T00:00:00Z"},
		{"_id":2,"title":"Cobra","link":"https://cobra.dev","tags":[]}
	]}`
	itemBody = `{"result":true,"item":{"_id":5,"title":"Learning Go generics","link":"https://go.dev/doc","tags":["go"]}}`
)

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

func TestLogin_VerifiesThenSaves(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{"GET /user": userBody}, withToken(""))

	if err := h.run("login", "--token", " abc "); err != nil {
		t.Fatalf("login: %v", err)
	}
	if got := h.creds.Saved(); len(got) != 1 || got[0] != "abc" {
		t.Errorf("saved tokens = %v, want [abc]", got)
	}
	if got := h.factory.Tokens(); len(got) != 1 || got[0] != "abc" {
		t.Errorf("client tokens = %v, want [abc]", got)
	}
	if !strings.Contains(h.stderr.String(), "Logged in as Ada Lovelace") {
		t.Errorf("stderr = %q, want greeting", h.stderr.String())
	}
}

func TestLogin_PromptsWhenNoFlag(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{"GET /user": userBody}, withToken(""))
	h.env.ReadSecret = func() (string, error) { return "secret", nil }

	if err := h.run("login"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(h.stderr.String(), "Enter your Raindrop.io API token") {
		t.Errorf("stderr = %q, want prompt", h.stderr.String())
	}
	if got := h.creds.Saved(); len(got) != 1 || got[0] != "secret" {
		t.Errorf("saved tokens = %v, want [secret]", got)
	}
}

func TestLogin_RejectedTokenIsNotSaved(t *testing.T) {
	t.Parallel()

	h := testEnv(t,
		map[string]string{"GET /user": `{"result":false,"errorMessage":"Unauthorized"}`},
		withToken(""),
		withStatus("GET /user", http.StatusUnauthorized),
	)

	err := h.run("login", "--token", "bad")
	if !errors.Is(err, apierr.ErrAuthFailed) {
		t.Fatalf("err = %v, want ErrAuthFailed", err)
	}
	if got := h.creds.Saved(); len(got) != 0 {
		t.Errorf("saved tokens = %v, want none", got)
	}
}

func TestLogin_EmptyToken(t *testing.T) {
	t.Parallel()

	h := testEnv(t, nil, withToken(""))

	if err := h.run("login"); err == nil {
		t.Fatal("expected error for empty token")
	}
	if n := len(h.api.Requests()); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestLogout(t *testing.T) {
	t.Parallel()

	h := testEnv(t, nil, withGetenv(map[string]string{config.EnvToken: "x"}))

	if err := h.run("logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if h.creds.Token() != "" {
		t.Error("token should be removed")
	}
	stderr := h.stderr.String()
	if !strings.Contains(stderr, "Logged out. Credentials removed.") {
		t.Errorf("stderr = %q", stderr)
	}
	if !strings.Contains(stderr, config.EnvToken+" is still set") {
		t.Errorf("stderr = %q, want env note", stderr)
	}
}

func TestNotLoggedIn(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{"GET /user": userBody}, withToken(""))

	err := h.run("whoami")
	if !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("err = %v, want ErrNotLoggedIn", err)
	}
	if n := len(h.api.Requests()); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestWhoami_JSON(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{"GET /user": userBody})

	if err := h.run("whoami", "--format", "json"); err != nil {
		t.Fatalf("whoami: %v", err)
	}
	var u raindrop.User
	h.jsonOut(t, &u)
	if u.ID != 42 || u.FullName != "Ada Lovelace" || !u.Pro {
		t.Errorf("user = %+v", u)
	}
}

// ---------------------------------------------------------------------------
// Output format resolution
// ---------------------------------------------------------------------------

func TestFormat_FlagBeatsSettings(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{"GET /user": userBody},
		withSettings(config.Config{Format: "yaml"}))

	if err := h.run("whoami", "-f", "json"); err != nil {
		t.Fatalf("whoami: %v", err)
	}
	var u raindrop.User
	h.jsonOut(t, &u)
}

func TestFormat_SettingsApply(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{"GET /user": userBody},
		withSettings(config.Config{Format: "yaml"}))

	if err := h.run("whoami"); err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(h.stdout.String(), "fullName: Ada Lovelace\n") {
		t.Errorf("stdout = %q, want YAML", h.stdout.String())
	}
}

func TestFormat_InvalidFlag(t *testing.T) {
	t.Parallel()

	h := testEnv(t, nil)

	err := h.run("whoami", "--format", "xml")
	if err == nil || !strings.Contains(err.Error(), "invalid argument") {
		t.Fatalf("err = %v, want invalid argument", err)
	}
}

// ---------------------------------------------------------------------------
// Bookmarks
// ---------------------------------------------------------------------------

func TestSearch_TOONByDefault(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{"GET /raindrops/0": raindropsBody})

	if err := h.run("search", "go"); err != nil {
		t.Fatalf("search: %v", err)
	}

	out := h.stdout.String()
	if !strings.HasPrefix(out, "items[2]{id,title,link,tags,type,created}:\n") {
		t.Errorf("stdout = %q, want tabular TOON header", out)
	}
	if !strings.Contains(out, `  1,Go,"https://go.dev","go,cli",link,`) {
		t.Errorf("stdout = %q, want first row", out)
	}

	req := h.api.find(t, http.MethodGet, "/raindrops/0")
	if q := req.Query["search"]; len(q) != 1 || q[0] != "go" {
		t.Errorf("search query = %v, want [go]", q)
	}
}

func TestSearch_Pretty(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{"GET /raindrops/12": raindropsBody})

	if err := h.run("search", "go", "--collection", "12", "--pretty"); err != nil {
		t.Fatalf("search: %v", err)
	}

	out := h.stdout.String()
	for _, want := range []string{"Search Results: go", "Title", "https://cobra.dev", "go, cli"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(h.stderr.String(), "Total results: 2") {
		t.Errorf("stderr = %q, want total", h.stderr.String())
	}
}

func TestSearch_APIErrorKeepsStatus(t *testing.T) {
	t.Parallel()

	h := testEnv(t, nil)

	err := h.run("search")
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	p := Payload(err)
	if p.Status != 404 || p.Hint != hintNotFound {
		t.Errorf("payload = %+v", p)
	}
}

func TestAdd_CollectionSentOnlyWhenSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantBody []string
		notBody  []string
	}{
		{
			name:     "defaults",
			args:     []string{"add", "https://go.dev"},
			wantBody: []string{`"link":"https://go.dev"`},
			notBody:  []string{"collectionId", "title", "tags"},
		},
		{
			name:     "explicit zero collection",
			args:     []string{"add", "https://go.dev", "--collection", "0", "--title", "Go", "--tags", "a, b,"},
			wantBody: []string{`"collectionId":0`, `"title":"Go"`, `"tags":["a","b"]`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := testEnv(t, map[string]string{"POST /raindrop": itemBody})
			if err := h.run(tt.args...); err != nil {
				t.Fatalf("add: %v", err)
			}
			body := h.api.find(t, http.MethodPost, "/raindrop").Body
			for _, w := range tt.wantBody {
				if !strings.Contains(body, w) {
					t.Errorf("body %s missing %s", body, w)
				}
			}
			for _, n := range tt.notBody {
				if strings.Contains(body, n) {
					t.Errorf("body %s should not contain %s", body, n)
				}
			}
		})
	}
}

func TestPatch_InvalidJSON(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{"PUT /raindrop/5": itemBody})

	err := h.run("patch", "5", `{"title": `)
	if !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("err = %v, want ErrInvalidJSON", err)
	}
	if n := len(h.api.Requests()); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
	if p := Payload(err); p.Status != 400 || p.Hint != hintInvalidJSON {
		t.Errorf("payload = %+v", p)
	}
}

func TestPatch_FromStdinWithComments(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{"PUT /raindrop/5": itemBody},
		withStdinText("{\n  // rename\n  \"title\": \"New\",\n  \"tags\": [],\n}\n"))

	if err := h.run("patch", "5", "-"); err != nil {
		t.Fatalf("patch: %v", err)
	}
	body := h.api.find(t, http.MethodPut, "/raindrop/5").Body
	if body != `{"title":"New","tags":[]}` {
		t.Errorf("body = %s", body)
	}
}

func TestGet_InvalidID(t *testing.T) {
	t.Parallel()

	h := testEnv(t, nil)

	err := h.run("get", "abc")
	if !errors.Is(err, ErrInvalidIDs) {
		t.Fatalf("err = %v, want ErrInvalidIDs", err)
	}
}

func TestDelete_DryRun(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{"DELETE /raindrop/5": `{"result":true}`})

	if err := h.run("--dry-run", "delete", "5"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n := len(h.api.Requests()); n != 0 {
		t.Errorf("requests = %d, want 0 in dry run", n)
	}
	if got := h.stdout.String(); got != "success: true\n" {
		t.Errorf("stdout = %q", got)
	}
	if !strings.Contains(h.stderr.String(), "DRY RUN") {
		t.Errorf("stderr = %q, want dry run log", h.stderr.String())
	}
}

func TestWayback(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{
		"GET /wayback": `{"archived_snapshots":{"closest":{"url":"https://web.archive.org/web/1/https://go.dev"}}}`,
	})

	if err := h.run("wayback", "https://go.dev", "-f", "json"); err != nil {
		t.Fatalf("wayback: %v", err)
	}
	var out struct {
		URL      string  `json:"url"`
		Snapshot *string `json:"snapshot"`
	}
	h.jsonOut(t, &out)
	if out.URL != "https://go.dev" || out.Snapshot == nil || !strings.Contains(*out.Snapshot, "web.archive.org") {
		t.Errorf("out = %+v", out)
	}
}

func TestWayback_NoSnapshotIsNull(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{"GET /wayback": `{"archived_snapshots":{}}`})

	if err := h.run("wayback", "https://nowhere.example", "-f", "json"); err != nil {
		t.Fatalf("wayback: %v", err)
	}
	if !strings.Contains(h.stdout.String(), `"snapshot": null`) {
		t.Errorf("stdout = %s", h.stdout.String())
	}
}

func TestSort(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{
		"GET /raindrop/5":       itemBody,
		"GET /collections/all": collectionsBody,
	})

	if err := h.run("sort", "5", "-f", "json"); err != nil {
		t.Fatalf("sort: %v", err)
	}
	var out sortReport
	h.jsonOut(t, &out)
	if out.Bookmark.ID != 5 {
		t.Errorf("bookmark = %+v", out.Bookmark)
	}
	if len(out.Suggested) != 2 || out.Suggested[0].ID != 10 || out.Suggested[1].ID != 11 {
		t.Fatalf("suggested = %+v, want Go and Machine Learning", out.Suggested)
	}
	if out.Suggested[0].MatchReason != "Matches keyword 'Go'" {
		t.Errorf("reason = %q", out.Suggested[0].MatchReason)
	}
}

func TestMatchCollections(t *testing.T) {
	t.Parallel()

	cols := func(titles ...string) []raindrop.Collection {
		out := make([]raindrop.Collection, len(titles))
		for i, title := range titles {
			out[i] = raindrop.Collection{ID: i + 1, Title: title}
		}
		return out
	}

	tests := []struct {
		name  string
		title string
		cols  []raindrop.Collection
		want  []int
	}{
		{"whole title", "Intro to Rust", cols("rust"), []int{1}},
		{"any word", "Deep learning notes", cols("Machine Learning"), []int{1}},
		{"no match", "Pasta", cols("Go", "Rust"), []int{}},
		{"blank title never matches", "anything", cols("  "), []int{}},
		{"capped at three", "a b c d", cols("a", "b", "c", "d"), []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := matchCollections(tt.title, tt.cols)
			if len(got) != len(tt.want) {
				t.Fatalf("got %+v, want ids %v", got, tt.want)
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("got[%d].ID = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Overview
// ---------------------------------------------------------------------------

func TestContext(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{
		"GET /user":            userBody,
		"GET /user/stats":      statsBody,
		"GET /raindrops/0":     raindropsBody,
		"GET /collections/all": collectionsBody,
	})

	if err := h.run("context", "--format", "json"); err != nil {
		t.Fatalf("context: %v", err)
	}

	var out contextReport
	h.jsonOut(t, &out)
	if len(out.User) != 1 || out.User[0].ID != 42 || out.User[0].Name != "Ada Lovelace" {
		t.Errorf("user = %+v", out.User)
	}
	if len(out.Stats) != 1 || out.Stats[0].TotalBookmarks != 120 || out.Stats[0].TotalCollections != 3 {
		t.Errorf("stats = %+v", out.Stats)
	}
	if len(out.Structure.RootCollections) != 2 {
		t.Errorf("root collections = %+v, want 2", out.Structure.RootCollections)
	}
	if len(out.RecentActivity) != 2 || out.RecentActivity[0].Created != "2025-03-01T00:00:00Z" {
		t.Errorf("recent = %+v", out.RecentActivity)
	}
}

func TestBuildContext_LimitsRecent(t *testing.T) {
	t.Parallel()

	recent := make([]raindrop.Raindrop, 8)
	for i := range recent {
		recent[i].ID = i
	}
	got := buildContext(raindrop.User{}, nil, recent, nil)
	if len(got.RecentActivity) != recentLimit {
		t.Errorf("recent = %d, want %d", len(got.RecentActivity), recentLimit)
	}
	if got.Stats[0].TotalBookmarks != 0 {
		t.Errorf("total = %d, want 0 without stats", got.Stats[0].TotalBookmarks)
	}
}

func TestContext_OneFailureFailsAll(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{
		"GET /user":            userBody,
		"GET /raindrops/0":     raindropsBody,
		"GET /collections/all": collectionsBody,
	})

	err := h.run("context")
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound from stats", err)
	}
	if h.stdout.String() != "" {
		t.Errorf("stdout = %q, want nothing", h.stdout.String())
	}
}

func TestStructure(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{
		"GET /collections/all": collectionsBody,
		"GET /tags":            tagsBody,
	})

	if err := h.run("structure", "-f", "json"); err != nil {
		t.Fatalf("structure: %v", err)
	}
	var out structureReport
	h.jsonOut(t, &out)
	if len(out.Collections) != 3 {
		t.Fatalf("collections = %+v", out.Collections)
	}
	if out.Collections[0].ParentID != nil {
		t.Errorf("root parent_id = %v, want null", *out.Collections[0].ParentID)
	}
	if p := out.Collections[1].ParentID; p == nil || *p != 10 {
		t.Errorf("child parent_id = %v, want 10", p)
	}
	if strings.Join(out.Tags, ",") != "go,cli" {
		t.Errorf("tags = %v", out.Tags)
	}
	if !strings.Contains(h.stdout.String(), `"parent_id": null`) {
		t.Error("root parent_id should be rendered as null")
	}
}

func TestSchema_NoLoginNeeded(t *testing.T) {
	t.Parallel()

	h := testEnv(t, nil, withToken(""))

	if err := h.run("schema", "--format", "json"); err != nil {
		t.Fatalf("schema: %v", err)
	}

	var out struct {
		Schemas map[string]struct {
			Type       string         `json:"type"`
			Properties map[string]any `json:"properties"`
			Required   []string       `json:"required"`
		} `json:"schemas"`
		UsageExamples map[string]string `json:"usage_examples"`
	}
	h.jsonOut(t, &out)

	upd := out.Schemas["RaindropUpdate"]
	for _, field := range []string{"title", "tags", "collectionId", "collection"} {
		if _, ok := upd.Properties[field]; !ok {
			t.Errorf("RaindropUpdate missing %q", field)
		}
	}
	if len(upd.Required) != 0 {
		t.Errorf("RaindropUpdate required = %v, want none", upd.Required)
	}
	if req := out.Schemas["CollectionCreate"].Required; len(req) != 1 || req[0] != "title" {
		t.Errorf("CollectionCreate required = %v, want [title]", req)
	}
	if len(out.UsageExamples) != 7 {
		t.Errorf("usage examples = %d, want 7", len(out.UsageExamples))
	}
	if n := len(h.api.Requests()); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

// ---------------------------------------------------------------------------
// Collections
// ---------------------------------------------------------------------------

func TestCollectionCreate_Flags(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{"POST /collection": `{"result":true,"item":{"_id":99,"title":"Research"}}`})

	if err := h.run("collection", "create", "Research", "--parent", "10", "--public=false", "--view", "grid"); err != nil {
		t.Fatalf("create: %v", err)
	}
	body := h.api.find(t, http.MethodPost, "/collection").Body
	want := `{"title":"Research","view":"grid","public":false,"parent":{"$id":10}}`
	if body != want {
		t.Errorf("body = %s, want %s", body, want)
	}
}

func TestCollectionBulkCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		args   []string
		route  string
		body   string
		stdout string
	}{
		{"delete-multiple", []string{"collection", "delete-multiple", "1, 2"}, "DELETE /collections", `{"ids":[1,2]}`, "success: true\n"},
		{"merge", []string{"collection", "merge", "1,2", "3"}, "PUT /collections/merge", `{"ids":[1,2],"to":3}`, "success: true\n"},
		{"reorder", []string{"collection", "reorder", "--", "-count"}, "PUT /collections", `{"sort":"-count"}`, "success: true\n"},
		{"expand-all", []string{"collection", "expand-all", "False"}, "PUT /collections", `{"expanded":false}`, "success: true\n"},
		{"clean", []string{"collection", "clean"}, "PUT /collections/clean", "", "removed_count: 4\n"},
		{"empty-trash", []string{"collection", "empty-trash"}, "DELETE /collection/-99", "", "success: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := testEnv(t, map[string]string{tt.route: `{"result":true,"count":4}`})
			if err := h.run(tt.args...); err != nil {
				t.Fatalf("run: %v", err)
			}
			method, path, _ := strings.Cut(tt.route, " ")
			if tt.body != "" {
				if got := h.api.find(t, method, path).Body; got != tt.body {
					t.Errorf("body = %s, want %s", got, tt.body)
				}
			}
			if got := h.stdout.String(); got != tt.stdout {
				t.Errorf("stdout = %q, want %q", got, tt.stdout)
			}
		})
	}
}

func TestCollectionExpandAll_BadBool(t *testing.T) {
	t.Parallel()

	h := testEnv(t, nil)

	err := h.run("collection", "expand-all", "maybe")
	if err == nil || !strings.Contains(err.Error(), "invalid argument") {
		t.Fatalf("err = %v, want invalid argument", err)
	}
}

func TestCollectionCover_FromURL(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{
		"GET /img/icon.png":     "PNGDATA",
		"PUT /collection/7/cover": `{"result":true,"item":{"_id":7,"title":"Docs"}}`,
	})

	if err := h.run("collection", "cover", "7", h.api.srv.URL+"/img/icon.png?size=64"); err != nil {
		t.Fatalf("cover: %v", err)
	}
	up := h.api.find(t, http.MethodPut, "/collection/7/cover")
	if !strings.Contains(up.Body, "PNGDATA") {
		t.Error("upload should carry the downloaded bytes")
	}
	if !strings.Contains(up.Body, `filename="icon.png"`) {
		t.Errorf("upload body missing file name:\n%s", up.Body)
	}
	if !strings.Contains(h.stdout.String(), "title: Docs") {
		t.Errorf("stdout = %q", h.stdout.String())
	}
}

func TestCollectionCover_MissingFile(t *testing.T) {
	t.Parallel()

	h := testEnv(t, nil)

	err := h.run("collection", "cover", "7", t.TempDir()+"/missing.png")
	if err == nil || !strings.Contains(err.Error(), "failed to open cover") {
		t.Fatalf("err = %v", err)
	}
	if n := len(h.api.Requests()); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestCollectionSetIcon(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{
		"GET /img/robot.png":      "ROBOT",
		"PUT /collection/7/cover": `{"result":true,"item":{"_id":7,"title":"Bots"}}`,
	})
	h.api.routes["GET /collections/covers/robot"] = `{"result":true,"items":[{"icons":[{"png":"` + h.api.srv.URL + `/img/robot.png"}]}]}`

	if err := h.run("collection", "set-icon", "7", "robot"); err != nil {
		t.Fatalf("set-icon: %v", err)
	}
	if up := h.api.find(t, http.MethodPut, "/collection/7/cover"); !strings.Contains(up.Body, "ROBOT") {
		t.Error("upload should carry the icon bytes")
	}
}

func TestCollectionSetIcon_NoIcons(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{"GET /collections/covers/zzz": `{"result":true,"items":[]}`})

	err := h.run("collection", "set-icon", "7", "zzz")
	if !errors.Is(err, ErrNoIcons) {
		t.Fatalf("err = %v, want ErrNoIcons", err)
	}
	if p := Payload(err); p.Status != 400 {
		t.Errorf("status = %d, want 400", p.Status)
	}
}

func TestCollectionList_Pretty(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{"GET /collections/all": collectionsBody})

	if err := h.run("collection", "list", "--pretty"); err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"Machine Learning", "Parent", "10"} {
		if !strings.Contains(h.stdout.String(), want) {
			t.Errorf("stdout missing %q", want)
		}
	}
	if !strings.Contains(h.stderr.String(), "Total collections: 3") {
		t.Errorf("stderr = %q", h.stderr.String())
	}
}

// ---------------------------------------------------------------------------
// Tags and batch
// ---------------------------------------------------------------------------

func TestTagCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		args  []string
		route string
		body  string
	}{
		{"delete global", []string{"tag", "delete", "old", "useless"}, "DELETE /tags/0", `{"tags":["old","useless"]}`},
		{"delete in collection", []string{"tag", "delete", "draft", "--collection", "12"}, "DELETE /tags/12", `{"tags":["draft"]}`},
		{"rename", []string{"tag", "rename", "work", "career"}, "PUT /tags/0", `{"replace":"career","tags":["work"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := testEnv(t, map[string]string{tt.route: `{"result":true}`})
			if err := h.run(tt.args...); err != nil {
				t.Fatalf("run: %v", err)
			}
			method, path, _ := strings.Cut(tt.route, " ")
			if got := h.api.find(t, method, path).Body; got != tt.body {
				t.Errorf("body = %s, want %s", got, tt.body)
			}
		})
	}
}

func TestTagList(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{"GET /tags": tagsBody})

	if err := h.run("tag", "list"); err != nil {
		t.Fatalf("tag list: %v", err)
	}
	if got := h.stdout.String(); got != "tags[2]: go,cli\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestBatchUpdate(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{"PUT /raindrops/55": `{"result":true}`})

	if err := h.run("batch", "update", "--ids", "1,2", "--collection", "55", `{"collection": {"$id": 66}}`); err != nil {
		t.Fatalf("batch update: %v", err)
	}
	body := h.api.find(t, http.MethodPut, "/raindrops/55").Body
	for _, want := range []string{`"ids":[1,2]`, `"collection":{"$id":66}`} {
		if !strings.Contains(body, want) {
			t.Errorf("body %s missing %s", body, want)
		}
	}
}

func TestBatchUpdate_RequiresIDs(t *testing.T) {
	t.Parallel()

	h := testEnv(t, nil)

	err := h.run("batch", "update", `{"tags":[]}`)
	if err == nil || !strings.Contains(err.Error(), "required flag") {
		t.Fatalf("err = %v, want required flag error", err)
	}
}

func TestBatchDelete_InvalidIDs(t *testing.T) {
	t.Parallel()

	h := testEnv(t, nil)

	err := h.run("batch", "delete", "--ids", "1,x")
	if !errors.Is(err, ErrInvalidIDs) {
		t.Fatalf("err = %v, want ErrInvalidIDs", err)
	}
	if n := len(h.api.Requests()); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestBatchDelete_Trash(t *testing.T) {
	t.Parallel()

	h := testEnv(t, map[string]string{"DELETE /raindrops/-99": `{"result":true}`})

	if err := h.run("batch", "delete", "--ids", "3,4", "--collection", "-99"); err != nil {
		t.Fatalf("batch delete: %v", err)
	}
	if got := h.api.find(t, http.MethodDelete, "/raindrops/-99").Body; got != `{"ids":[3,4]}` {
		t.Errorf("body = %s", got)
	}
}
