package mockserver_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/specmock/pkg/config"
	"github.com/getmockd/specmock/pkg/datasource"
	"github.com/getmockd/specmock/pkg/mockserver"
)

const exampleDir = "../../examples/with-config-file/"

const lorem = "Lorem ipsum dolor sit amet"

func petstoreServer(t *testing.T, opts ...mockserver.Option) *mockserver.Server {
	t.Helper()
	spec, err := os.ReadFile(exampleDir + "petstore.yaml")
	require.NoError(t, err)
	srv, err := mockserver.New(spec, config.Default(), opts...)
	require.NoError(t, err)
	return srv
}

func get(srv *mockserver.Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestPetstore_Responses(t *testing.T) {
	srv := petstoreServer(t)
	require.Len(t, srv.Endpoints(), 6)

	tag := `{"id":123456789,"name":"` + lorem + `"}`
	pet := `{"id":123456789,` +
		`"category":{"id":123456789,"name":"` + lorem + `","sub":{"id":123456789,"name":"` + lorem + `"}},` +
		`"name":"doggie",` +
		`"photoUrls":["http://example.com","http://example.com"],` +
		`"tags":[` + tag + `,` + tag + `],` +
		`"status":"available"}`

	tests := []struct {
		name    string
		path    string
		body    string
		headers map[string]string
	}{
		{"pet by id", "/v2/pet/10", pet, nil},
		{"find by status", "/v2/pet/findByStatus?status=sold", "[" + pet + "," + pet + "]", map[string]string{"X-Rate-Limit": "1234"}},
		{"inventory", "/v2/store/inventory", `{"additionalProp1":1234,"additionalProp2":1234}`, nil},
		{"login", "/v2/user/login", `"` + lorem + `"`, map[string]string{"X-Expires-After": "2017-07-21T17:32:28Z"}},
		{"user", "/v2/user/jane", `{"id":123456789,"username":"` + lorem + `","email":"firstname@domain.com","password":"pass1234"}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(srv, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.body, rec.Body.String())
			for name, want := range tt.headers {
				assert.Equal(t, want, rec.Header().Get(name))
			}
		})
	}
}

func TestPetstore_Rules(t *testing.T) {
	rules, err := datasource.LoadFromFile(exampleDir + "rules.yaml")
	require.NoError(t, err)
	require.Equal(t, 3, rules.Len())
	srv := petstoreServer(t, mockserver.WithDatasource(rules))

	rec := get(srv, httptest.NewRequest(http.MethodGet, "/v2/pet/0", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"code":404,"message":"Pet not found"}`, rec.Body.String())

	rec = get(srv, httptest.NewRequest(http.MethodPost, "/v2/store/order", strings.NewReader(`{"petId": 3, "quantity": 100}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("X-Bulk"))
	assert.Equal(t, `{"id":1,"quantity":100,"status":"approved"}`, rec.Body.String())

	// A small order falls through to the synthesized default.
	rec = get(srv, httptest.NewRequest(http.MethodPost, "/v2/store/order", strings.NewReader(`{"quantity": 1}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Bulk"))
	assert.Contains(t, rec.Body.String(), `"status":"placed"`)

	req := httptest.NewRequest(http.MethodGet, "/v2/user/jane", nil)
	req.Header.Set("X-Tenant", "debug")
	rec = get(srv, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "internal error (simulated)", rec.Body.String())

	rec = get(srv, httptest.NewRequest(http.MethodGet, "/v2/pet/5", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"doggie"`)
}

func TestPetstore_ExampleConfig(t *testing.T) {
	cfg, err := config.LoadFromFile(exampleDir + "specmock.yaml")
	require.NoError(t, err)
	assert.Equal(t, "rules.yaml", cfg.RulesFile)
	assert.True(t, cfg.Generation.Lazy)

	spec, err := os.ReadFile(exampleDir + "petstore.yaml")
	require.NoError(t, err)
	srv, err := mockserver.New(spec, cfg)
	require.NoError(t, err)

	rec := get(srv, httptest.NewRequest(http.MethodGet, "/v2/user/login", nil))
	assert.Equal(t, `"sample text"`, rec.Body.String())
}
