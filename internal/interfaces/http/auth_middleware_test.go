package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Traslados-api/internal/application/dto"
	pkgjwt "github.com/jhoicas/Traslados-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "traslados-test"
	testExpMin    = 60
)

// send envía la petición con el header Authorization tal cual y devuelve status y cuerpo de error.
func (a *api) send(method, path, authHeader string, body any) (int, dto.ErrorResponse) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var errBody dto.ErrorResponse
	if resp.StatusCode >= http.StatusBadRequest {
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
	}
	return resp.StatusCode, errBody
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// signClaims firma claims arbitrarios con el secreto de los tests.
func signClaims(t *testing.T, claims pkgjwt.Claims) string {
	t.Helper()
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + tok
}

// ──────────────────────────────────────────────────────────────────────────────
// Permisos por rol sobre las rutas reales
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_RutasRestringidasPorRol(t *testing.T) {
	a := newAPI(t, nil)
	origin, dest, product := a.seed()
	tr := a.createTransfer(origin, dest, product, "10")
	const missingDisc = "/api/discrepancies/99999999-0000-0000-0000-000000000000/resolve"

	cases := []struct {
		name   string
		method string
		path   string
		role   string
		body   any
		want   int
		code   string
	}{
		{"bodeguero no crea sucursales", http.MethodPost, "/api/branches", "bodeguero",
			dto.CreateBranchRequest{Code: "TDA-09", Name: "Tienda sur"}, http.StatusForbidden, "FORBIDDEN"},
		{"supervisor no crea productos", http.MethodPost, "/api/products", "supervisor",
			dto.CreateProductRequest{SKU: "CEB-01", Name: "Cebolla", Price: d("3"), Cost: d("2")}, http.StatusForbidden, "FORBIDDEN"},
		{"bodeguero no vence lotes", http.MethodPost, "/api/batches/expire", "bodeguero", nil, http.StatusForbidden, "FORBIDDEN"},
		{"supervisor vence lotes", http.MethodPost, "/api/batches/expire", "supervisor", nil, http.StatusOK, ""},
		{"rol desconocido no resuelve", http.MethodPost, missingDisc, "invitado",
			dto.ResolveRequest{Disposition: "adjust"}, http.StatusForbidden, "FORBIDDEN"},
		{"supervisor pasa el filtro de resolución", http.MethodPost, missingDisc, "supervisor",
			dto.ResolveRequest{Disposition: "adjust"}, http.StatusNotFound, "NOT_FOUND"},
		{"bodeguero no aprueba", http.MethodPost, "/api/transfers/" + tr.ID + "/approve", "bodeguero", nil, http.StatusForbidden, "FORBIDDEN"},
		{"admin crea sucursales", http.MethodPost, "/api/branches", "admin",
			dto.CreateBranchRequest{Code: "TDA-09", Name: "Tienda sur"}, http.StatusCreated, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, errBody := a.send(tc.method, tc.path, bearer(t, tc.role), tc.body)
			assert.Equal(t, tc.want, status)
			assert.Equal(t, tc.code, errBody.Code)
		})
	}
	assert.Equal(t, "pending", a.transfer(tr.ID).Status, "los rechazos no mueven el estado")
}

func TestRouter_TokenSinRolEnRutaDeTraslado(t *testing.T) {
	a := newAPI(t, nil)
	origin, dest, product := a.seed()
	tr := a.createTransfer(origin, dest, product, "10")
	noRole := bearer(t, "")

	status, errBody := a.send(http.MethodPost, "/api/transfers/"+tr.ID+"/approve", noRole, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_ROLE", errBody.Code)
	assert.Equal(t, "pending", a.transfer(tr.ID).Status)

	// Las rutas sin restricción de rol solo exigen token válido.
	status, _ = a.send(http.MethodPost, "/api/transfers/"+tr.ID+"/deliver", noRole, nil)
	assert.Equal(t, http.StatusConflict, status, "llega al caso de uso: pending no se entrega")
}

func TestRouter_TokenInvalido(t *testing.T) {
	a := newAPI(t, nil)
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, "admin", testIssuer, -1)
	require.NoError(t, err)
	foreign, err := pkgjwt.Generate("otro-secret", testUserID, "admin", testIssuer, testExpMin)
	require.NoError(t, err)

	cases := map[string]struct {
		header string
		code   string
	}{
		"sin header":      {"", "MISSING_TOKEN"},
		"esquema basic":   {"Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		"expirado":        {"Bearer " + expired, "INVALID_TOKEN"},
		"otro secreto":    {"Bearer " + foreign, "INVALID_TOKEN"},
		"malformado":      {"Bearer token.invalido.aqui", "INVALID_TOKEN"},
		"sin sub ni user": {signClaims(t, pkgjwt.Claims{Role: "admin"}), "INVALID_TOKEN"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			status, errBody := a.send(http.MethodGet, "/api/transfers", tc.header, nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tc.code, errBody.Code)
		})
	}
}

// El actor registrado sale del claim sub cuando el token no trae user_id.
func TestRouter_ActorDesdeSubject(t *testing.T) {
	a := newAPI(t, nil)
	origin, dest, product := a.seed()
	const subject = "00000000-0000-0000-0000-0000000000b7"
	auth := signClaims(t, pkgjwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "sso-externo",
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "bodeguero",
	})

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(dto.CreateTransferRequest{
		OriginBranchID:      origin,
		DestinationBranchID: dest,
		Lines:               []dto.TransferLineRequest{{ProductID: product, ExpectedQuantity: d("5")}},
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/transfers", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var tr dto.TransferResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tr))
	assert.Equal(t, subject, tr.CreatedBy)

	// el mismo token no alcanza para aprobar
	status, errBody := a.send(http.MethodPost, "/api/transfers/"+tr.ID+"/approve", auth, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errBody.Code)
}
