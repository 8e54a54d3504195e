package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wadjakorntonsri/limestar/pkg/core/domain"
	"github.com/wadjakorntonsri/limestar/pkg/ports"
)

const (
	testPassword = "hunter2"
	testSecret   = "e2e-secret"
)

// backend is an in-memory LimeStar server.
type backend struct {
	mu      sync.Mutex
	links   []domain.Link
	nextID  int64
	vocab   []domain.Tag
	logouts int
	created int
	queries chan url.Values
}

func newBackend() *backend {
	return &backend{
		nextID: 1,
		vocab: []domain.Tag{
			{ID: 1, Name: "go", Color: "#00ADD8"},
			{ID: 2, Name: "rust", Color: "#dea584"},
			{ID: 3, Name: "dev", IsCategory: true},
		},
		queries: make(chan url.Values, 16),
	}
}

func (b *backend) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", b.login)
	mux.HandleFunc("POST /api/auth/verify", b.verify)
	mux.HandleFunc("POST /api/auth/logout", b.logout)
	mux.HandleFunc("GET /api/links", b.list)
	mux.HandleFunc("GET /api/search", b.search)
	mux.HandleFunc("POST /api/links", b.requireAuth(b.create))
	mux.HandleFunc("GET /api/links/{id}", b.get)
	mux.HandleFunc("PUT /api/links/{id}", b.requireAuth(b.update))
	mux.HandleFunc("DELETE /api/links/{id}", b.requireAuth(b.remove))
	mux.HandleFunc("GET /api/tags", b.tags)
	mux.HandleFunc("GET /api/tags/categories", b.categories)
	mux.HandleFunc("POST /api/tags", b.requireAuth(b.createTag))
	return mux
}

func issueToken(ttl time.Duration) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	s, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		panic(err)
	}
	return s
}

func validToken(raw string) bool {
	_, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	return err == nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (b *backend) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || !validToken(raw) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
			return
		}
		next(w, r)
	}
}

func (b *backend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	json.NewDecoder(r.Body).Decode(&req)
	if req.Password != testPassword {
		writeJSON(w, http.StatusOK, domain.LoginResponse{Success: false, Message: "Invalid password"})
		return
	}
	writeJSON(w, http.StatusOK, domain.LoginResponse{Success: true, Token: issueToken(time.Hour), Message: "Login successful"})
}

func (b *backend) verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	json.NewDecoder(r.Body).Decode(&req)
	writeJSON(w, http.StatusOK, domain.VerifyResponse{Valid: validToken(req.Token)})
}

func (b *backend) logout(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.logouts++
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func paging(q url.Values) (page, size int) {
	page, _ = strconv.Atoi(q.Get("page"))
	size, _ = strconv.Atoi(q.Get("page_size"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	return page, size
}

func (b *backend) pageOf(matched []domain.Link, page, size int) domain.LinkPage {
	start := (page - 1) * size
	if start > len(matched) {
		start = len(matched)
	}
	end := min(start+size, len(matched))
	return domain.LinkPage{
		Items:    append([]domain.Link{}, matched[start:end]...),
		Total:    len(matched),
		Page:     page,
		PageSize: size,
		HasMore:  domain.HasMore(len(matched), page, size),
	}
}

func (b *backend) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, size := paging(q)

	b.mu.Lock()
	defer b.mu.Unlock()
	var matched []domain.Link
	for _, l := range b.links {
		if tag := q.Get("tag"); tag == "" || l.HasTag(tag) {
			matched = append(matched, l)
		}
	}
	writeJSON(w, http.StatusOK, b.pageOf(matched, page, size))
}

func (b *backend) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, size := paging(q)
	text := strings.ToLower(q.Get("q"))

	b.mu.Lock()
	var matched []domain.Link
	for _, l := range b.links {
		if text != "" && !strings.Contains(strings.ToLower(l.Title+" "+l.URL), text) {
			continue
		}
		all := true
		for _, tag := range q["tags"] {
			if !l.HasTag(tag) {
				all = false
			}
		}
		if all {
			matched = append(matched, l)
		}
	}
	resp := b.pageOf(matched, page, size)
	b.mu.Unlock()

	select {
	case b.queries <- q:
	default:
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *backend) find(r *http.Request) (int, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	for i, l := range b.links {
		if l.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (b *backend) get(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.find(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Link not found"})
		return
	}
	writeJSON(w, http.StatusOK, b.links[i])
}

func (b *backend) create(w http.ResponseWriter, r *http.Request) {
	var in ports.CreateLinkInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	u, _ := url.Parse(in.URL)

	b.mu.Lock()
	defer b.mu.Unlock()
	l := domain.Link{
		ID:        b.nextID,
		URL:       in.URL,
		Title:     in.URL,
		UserNote:  in.UserNote,
		Domain:    u.Hostname(),
		CreatedAt: domain.Timestamp{Time: time.Now().UTC()},
		Tags:      []domain.Tag{},
	}
	b.nextID++
	b.created++
	// Newest first.
	b.links = append([]domain.Link{l}, b.links...)
	writeJSON(w, http.StatusCreated, l)
}

func (b *backend) update(w http.ResponseWriter, r *http.Request) {
	var in ports.UpdateLinkInput
	json.NewDecoder(r.Body).Decode(&in)

	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.find(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Link not found"})
		return
	}
	l := &b.links[i]
	if in.Title != nil {
		l.Title = *in.Title
	}
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.UserNote != nil {
		l.UserNote = in.UserNote
	}
	if in.TagIDs != nil {
		l.Tags = []domain.Tag{}
		for _, id := range in.TagIDs {
			for _, t := range b.vocab {
				if t.ID == id {
					l.Tags = append(l.Tags, t)
				}
			}
		}
	}
	writeJSON(w, http.StatusOK, *l)
}

func (b *backend) remove(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.find(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Link not found"})
		return
	}
	b.links = append(b.links[:i], b.links[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (b *backend) countLocked(name string) int {
	n := 0
	for _, l := range b.links {
		if l.HasTag(name) {
			n++
		}
	}
	return n
}

func (b *backend) tags(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []domain.TagWithCount{}
	for _, t := range b.vocab {
		if !t.IsCategory {
			out = append(out, domain.TagWithCount{Tag: t, Count: b.countLocked(t.Name)})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *backend) categories(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cat := domain.CategoryWithTags{ID: 3, Name: "dev", Tags: []domain.TagWithCount{}}
	for _, t := range b.vocab {
		if !t.IsCategory {
			n := b.countLocked(t.Name)
			cat.Count += n
			cat.Tags = append(cat.Tags, domain.TagWithCount{Tag: t, Count: n})
		}
	}
	writeJSON(w, http.StatusOK, []domain.CategoryWithTags{cat})
}

func (b *backend) createTag(w http.ResponseWriter, r *http.Request) {
	var in ports.CreateTagInput
	json.NewDecoder(r.Body).Decode(&in)

	b.mu.Lock()
	defer b.mu.Unlock()
	t := domain.Tag{ID: int64(len(b.vocab) + 1), Name: in.Name, Color: in.Color}
	b.vocab = append(b.vocab, t)
	writeJSON(w, http.StatusCreated, domain.TagWithCount{Tag: t})
}

// syncBuffer is written by query callbacks on timer goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

type testEnv struct {
	t        *testing.T
	backend  *backend
	apiURL   string
	stateURL string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	b := newBackend()
	srv := httptest.NewServer(b.routes())
	t.Cleanup(srv.Close)

	return &testEnv{
		t:        t,
		backend:  b,
		apiURL:   srv.URL + "/api",
		stateURL: "file:" + filepath.Join(t.TempDir(), "limestar", "state.db"),
	}
}

func (e *testEnv) run(stdin io.Reader, args ...string) (string, error) {
	e.t.Helper()
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	var out, errOut syncBuffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(stdin)
	cmd.SetArgs(append([]string{"--api", e.apiURL, "--state", e.stateURL}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(nil, args...)
	if err != nil {
		e.t.Fatalf("limestar %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func assertContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Errorf("output missing %q:\n%s", want, out)
	}
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)

	assertContains(t, env.mustRun("status"), "state: logged out")

	if _, err := env.run(nil, "login", "wrong"); err == nil || err.Error() != "Invalid password" {
		t.Fatalf("wrong password: got %v", err)
	}
	assertContains(t, env.mustRun("status"), "state: logged out")

	out, err := env.run(strings.NewReader(testPassword+"\n"), "login", "--password-stdin")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	assertContains(t, out, "Login successful")

	// A fresh process restores and verifies the persisted token.
	assertContains(t, env.mustRun("status"), "state: logged in")

	assertContains(t, env.mustRun("logout"), "Logged out.")
	assertContains(t, env.mustRun("status"), "state: logged out")

	env.backend.mu.Lock()
	logouts := env.backend.logouts
	env.backend.mu.Unlock()
	if logouts != 1 {
		t.Errorf("server logouts: got %d, want 1", logouts)
	}
}

func TestMutationsNeedLogin(t *testing.T) {
	env := newTestEnv(t)

	for _, args := range [][]string{
		{"add", "example.com"},
		{"delete", "1"},
		{"edit", "1", "--title", "x"},
		{"tag-create", "web"},
	} {
		if _, err := env.run(nil, args...); !errors.Is(err, errNotLoggedIn) {
			t.Errorf("%v: got %v, want errNotLoggedIn", args, err)
		}
	}

	env.backend.mu.Lock()
	defer env.backend.mu.Unlock()
	if env.backend.created != 0 {
		t.Errorf("links created without login: %d", env.backend.created)
	}
}

func TestLinkCommands(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("login", testPassword)

	assertContains(t, env.mustRun("list"), "No links.")

	if _, err := env.run(nil, "add", "  "); !errors.Is(err, domain.ErrEmptyURL) {
		t.Errorf("blank url: got %v", err)
	}

	assertContains(t, env.mustRun("add", "go.dev/doc", "--note", " read later "), "Added link 1: https://go.dev/doc")
	assertContains(t, env.mustRun("add", "https://www.rust-lang.org"), "Added link 2: https://www.rust-lang.org")

	out := env.mustRun("show", "1")
	assertContains(t, out, "URL:         https://go.dev/doc")
	assertContains(t, out, "Note:        read later")

	out = env.mustRun("edit", "1", "--title", "Go docs", "--tags", "1")
	assertContains(t, out, "Title:       Go docs")
	assertContains(t, out, "Tags:        #go")

	out = env.mustRun("list")
	assertContains(t, out, "Go docs")
	assertContains(t, out, "2 shown, 2 total, page 1")

	out = env.mustRun("list", "--tag", "go")
	assertContains(t, out, "1 shown, 1 total")

	out = env.mustRun("search", "rust")
	assertContains(t, out, "https://www.rust-lang.org")
	assertContains(t, out, "1 shown, 1 total")

	out = env.mustRun("search", "--tag", "go")
	assertContains(t, out, "Go docs")
	assertContains(t, out, "1 shown, 1 total")

	assertContains(t, env.mustRun("delete", "2"), "Deleted link 2")
	assertContains(t, env.mustRun("list"), "1 shown, 1 total")

	if _, err := env.run(nil, "show", "2"); err == nil {
		t.Error("deleted link still shown")
	}
}

func TestTagCommands(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("login", testPassword)
	env.mustRun("add", "go.dev")
	env.mustRun("edit", "1", "--tags", "1")

	out := env.mustRun("tags")
	assertContains(t, out, "#go")
	if strings.Contains(out, "#rust") {
		t.Errorf("empty tag listed:\n%s", out)
	}
	assertContains(t, env.mustRun("tags", "--all"), "#rust")

	out = env.mustRun("tags", "--categories")
	assertContains(t, out, "dev (1)")
	assertContains(t, out, "  #go (1)")
	if strings.Contains(out, "#rust") {
		t.Errorf("empty child tag listed:\n%s", out)
	}

	assertContains(t, env.mustRun("tag-create", "web", "--color", "#22c55e"), "Created tag #web (4)")
}

func TestBrowse(t *testing.T) {
	t.Setenv("LIMESTAR_DEBOUNCE", "5ms")
	env := newTestEnv(t)
	env.mustRun("login", testPassword)
	env.mustRun("add", "go.dev")
	env.mustRun("add", "www.rust-lang.org")
	env.mustRun("edit", "1", "--title", "Go", "--tags", "1")

	pr, pw := io.Pipe()
	go func() {
		fmt.Fprintln(pw, "/t go")
		fmt.Fprintln(pw, "/c")
		fmt.Fprintln(pw, "/q rust")
		select {
		case <-env.backend.queries: // tag search
		case <-time.After(5 * time.Second):
		}
		select {
		case <-env.backend.queries: // debounced text search
		case <-time.After(5 * time.Second):
		}
		fmt.Fprintln(pw, "/tags")
		fmt.Fprintln(pw, "/bogus")
		fmt.Fprintln(pw, "/quit")
		pw.Close()
	}()

	out, err := env.run(pr, "browse")
	if err != nil {
		t.Fatalf("browse: %v", err)
	}

	assertContains(t, out, "2 shown, 2 total, page 1")
	assertContains(t, out, "Tags: #go")
	assertContains(t, out, "1 shown, 1 total, page 1")
	assertContains(t, out, "dev (1)")
	assertContains(t, out, "unknown command /bogus")
}
