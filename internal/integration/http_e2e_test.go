//go:build integration || !unit

package integration

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	httpserver "tabito/internal/adapters/http_server"
	"tabito/internal/adapters/places"
	"tabito/internal/app"
	"tabito/internal/domain"
	mysqlrepo "tabito/internal/storage/mysql"
)

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=tabito",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/tabito?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC", hostPort)

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func postJSON(t *testing.T, url string, body any) map[string]any {
	t.Helper()
	b, _ := json.Marshal(body)
	res, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("POST %s: status %d", url, res.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

// The whole pipeline against real MySQL: a keyless provider degrades to its
// deterministic mock list, the quick import canonicalizes and persists it,
// and the second run dedupes every row by the title triple.
func TestHTTP_EndToEnd_QuickImportAndRead(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)

	providers := map[domain.Source]domain.SearchProvider{
		domain.SourcePlaces: places.New("http://unused.invalid", "", 5),
	}
	imports := app.NewImportService(providers, repo, nil, time.Minute)
	queries := app.NewQueryService(repo, nil, time.Minute)

	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{Imports: imports, Q: queries})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	quickBody := map[string]any{
		"query":      "restaurantes",
		"category":   "Restaurantes",
		"prefecture": "Kyoto",
		"limit":      5,
		"source":     "places",
	}

	first := postJSON(t, ts.URL+"/v1/import/quick", quickBody)
	if got := first["imported"].(float64); got != 5 {
		t.Fatalf("first run imported = %v, want 5 (body %v)", got, first)
	}
	if got := first["errors"].(float64); got != 0 {
		t.Fatalf("first run errors = %v", got)
	}

	second := postJSON(t, ts.URL+"/v1/import/quick", quickBody)
	if got := second["imported"].(float64); got != 0 {
		t.Fatalf("second run imported = %v, want 0", got)
	}
	if got := second["duplicates"].(float64); got != 5 {
		t.Fatalf("second run duplicates = %v, want 5", got)
	}

	// read side
	res, err := http.Get(ts.URL + "/v1/experiences?prefecture=Kyoto&category=Restaurantes")
	if err != nil {
		t.Fatalf("GET list: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list status %d", res.StatusCode)
	}
	etag := res.Header.Get("ETag")
	if etag == "" {
		t.Fatal("list response missing ETag")
	}

	var recs []struct {
		ID         int64  `json:"ID"`
		Title      string `json:"Title"`
		Prefecture string `json:"Prefecture"`
		Category   string `json:"Category"`
		Approved   bool   `json:"Approved"`
	}
	if err := json.NewDecoder(res.Body).Decode(&recs); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("list returned %d rows, want 5", len(recs))
	}
	for _, rec := range recs {
		if rec.Prefecture != "Kyoto" || rec.Category != "Restaurantes" {
			t.Fatalf("unexpected row: %+v", rec)
		}
		if rec.Approved {
			t.Fatal("imports must land unapproved")
		}
	}

	// conditional re-read
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/experiences?prefecture=Kyoto&category=Restaurantes", nil)
	req.Header.Set("If-None-Match", etag)
	res2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("conditional GET: %v", err)
	}
	defer res2.Body.Close()
	if res2.StatusCode != http.StatusNotModified {
		t.Fatalf("conditional GET status %d, want 304", res2.StatusCode)
	}

	// single record
	one, err := http.Get(fmt.Sprintf("%s/v1/experiences/%d", ts.URL, recs[0].ID))
	if err != nil {
		t.Fatalf("GET one: %v", err)
	}
	defer one.Body.Close()
	if one.StatusCode != http.StatusOK {
		t.Fatalf("get one status %d", one.StatusCode)
	}

	missing, err := http.Get(ts.URL + "/v1/experiences/99999")
	if err != nil {
		t.Fatalf("GET missing: %v", err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("missing id status %d, want 404", missing.StatusCode)
	}
}
