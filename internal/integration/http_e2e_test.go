//go:build integration

package integration

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"hostaway_sync/internal/adapters/hostaway"
	server "hostaway_sync/internal/adapters/http_server"
	redisad "hostaway_sync/internal/adapters/redis"
	"hostaway_sync/internal/app"
	"hostaway_sync/internal/domain"
	mysqlrepo "hostaway_sync/internal/storage/mysql"
)

// ---------- helpers ----------

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
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
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=rentals"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/rentals?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))
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

// upstream mimics the listing API: bearer verification succeeds with the raw secret.
func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/listings":
			_, _ = io.WriteString(w, `{"status":"success","result":[
				{"id": 5001, "name": "Casa Azul", "city": "Lisbon", "countryCode": "PT", "lat": 38.72, "lng": -9.14,
				 "bedroomCount": 2, "accommodates": 4, "price": 120.00,
				 "photos": [{"url": "https://img/a.jpg"}],
				 "amenities": [{"id": 1, "name": "WiFi"}, {"id": 2, "name": "Pool"}]},
				{"id": 5002, "name": "Casa Azul", "city": "Porto", "accommodates": 2, "amenities": [{"id": 1, "name": "WiFi"}]},
				{"name": "Broken"}
			]}`)
		case "/listings/5001/calendar/priceDetails":
			_, _ = io.WriteString(w, `{"result":{"totalPrice":360.00}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

// ---------- the test ----------

func TestHTTP_EndToEnd_SyncThenBrowse(t *testing.T) {
	db := startMySQL(t)
	mr := miniredis.RunT(t)
	up := upstream(t)

	client, err := hostaway.New(up.URL, 100)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	repo := mysqlrepo.New(db)
	cache := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	creds := domain.APICredentials{AccountID: "acct-1", Secret: "s3cret"}

	srv := server.New()
	srv.MountHandlers(&server.Handlers{
		Q:       app.NewQueryService(repo, cache, time.Minute),
		Sync:    app.NewSyncService(client, repo, cache, creds, 2),
		Prices:  app.NewPriceService(client, creds),
		Booking: app.NewBookingService(client, creds),
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	for run := 1; run <= 2; run++ {
		res, err := http.Post(ts.URL+"/v1/admin/sync", "application/json", nil)
		if err != nil {
			t.Fatalf("POST sync: %v", err)
		}
		var out struct {
			Status  string             `json:"status"`
			Summary domain.SyncSummary `json:"summary"`
		}
		_ = json.NewDecoder(res.Body).Decode(&out)
		res.Body.Close()
		if res.StatusCode != http.StatusOK || out.Status != "partial" || out.Summary.Synced != 2 || len(out.Summary.Errors) != 1 {
			t.Fatalf("run %d: unexpected sync result %d %+v", run, res.StatusCode, out)
		}
	}

	res, err := http.Get(ts.URL + "/v1/properties/casa-azul-1")
	if err != nil {
		t.Fatalf("GET property: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var p domain.Property
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ListingID != "5002" || p.City != "Porto" || p.CheckInTime != "15:00" {
		t.Fatalf("unexpected property: %+v", p)
	}

	res2, err := http.Get(ts.URL + "/v1/listings/5001/price?check_in=2026-11-01&check_out=2026-11-04")
	if err != nil {
		t.Fatalf("GET price: %v", err)
	}
	defer res2.Body.Close()
	var q domain.PriceQuote
	if err := json.NewDecoder(res2.Body).Decode(&q); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if q.TotalPrice.String() != "360" {
		t.Fatalf("unexpected price: %+v", q)
	}

	res3, err := http.Get(ts.URL + "/v1/amenities")
	if err != nil {
		t.Fatalf("GET amenities: %v", err)
	}
	defer res3.Body.Close()
	var ams []domain.Amenity
	if err := json.NewDecoder(res3.Body).Decode(&ams); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ams) != 2 {
		t.Fatalf("expected 2 amenities, got %+v", ams)
	}
}
