package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Identidad-api/internal/application/auth"
	"github.com/jhoicas/Identidad-api/internal/application/credential"
	"github.com/jhoicas/Identidad-api/internal/application/dto"
	"github.com/jhoicas/Identidad-api/internal/application/usecase"
	"github.com/jhoicas/Identidad-api/internal/domain/entity"
	"github.com/jhoicas/Identidad-api/internal/domain/repository"
	"github.com/jhoicas/Identidad-api/internal/infrastructure/facial"
	"github.com/jhoicas/Identidad-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Identidad-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Identidad-api/pkg/jwt"
	"github.com/jhoicas/Identidad-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture — API completa sobre repos en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testNotifier struct {
	sent chan string // tokens enviados
}

func (n *testNotifier) SendResetLink(_, token string, _ time.Time) error {
	n.sent <- token
	return nil
}

type apiFixture struct {
	app      *fiber.App
	users    *memory.UserRepo
	hasher   *credential.Hasher
	notifier *testNotifier
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	users := memory.NewUserRepository()
	tokens := memory.NewResetTokenRepository()
	hasher := credential.NewHasher(bcrypt.MinCost)
	notifier := &testNotifier{sent: make(chan string, 8)}

	manager := credential.NewManager(users, hasher, facial.NewEuclideanMatcher(), 8)
	resetSvc := credential.NewResetService(
		users, tokens, memory.NewTxRunner(users, tokens),
		hasher, notifier, 30*time.Minute, 8, logger.Nop(),
	)
	authUC := auth.NewAuthUseCase(users, manager, 0.6, auth.JWTConfig{
		Secret:     testJWTSecret,
		ExpMinutes: testExpMin,
		Issuer:     testIssuer,
	})
	userUC := usecase.NewUserUseCase(users, hasher, 8)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:       authUC,
		ResetSvc:     resetSvc,
		CredentialUC: manager,
		UserUC:       userUC,
		JWTSecret:    testJWTSecret,
	})
	return &apiFixture{app: app, users: users, hasher: hasher, notifier: notifier}
}

// seedAPIUser crea un usuario activo con contraseña.
func (f *apiFixture) seedAPIUser(t *testing.T, email, password, role string) *entity.UserRecord {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	require.NoError(t, err)
	user := &entity.UserRecord{
		ID:           uuid.New().String(),
		Email:        email,
		Role:         role,
		IsActive:     true,
		LoginMethod:  entity.LoginMethodPassword,
		PasswordHash: hash,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

// postJSON lanza un POST con cuerpo JSON y devuelve la respuesta.
func (f *apiFixture) postJSON(t *testing.T, path string, payload any, authHeader string) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// patchFacial parche que enrola el descriptor y deja la cuenta en modo facial.
func patchFacial(descriptor []float64) repository.UserPatch {
	method := entity.LoginMethodFacial
	return repository.UserPatch{
		Facial: &entity.FacialCredential{
			Descriptor:   descriptor,
			RegisteredAt: time.Now(),
		},
		LoginMethod: &method,
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Login
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_Exitoso_EmiteJWT(t *testing.T) {
	f := newAPIFixture(t)
	u := f.seedAPIUser(t, "ana@ejemplo.com", "contraseña-valida", entity.RoleStandard)

	resp := f.postJSON(t, "/api/auth/login", dto.LoginRequest{
		Email:    "ana@ejemplo.com",
		Password: "contraseña-valida",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()

	assert.Equal(t, u.ID, out.User.ID)
	assert.Equal(t, "ana@ejemplo.com", out.User.Email)
	assert.NotNil(t, out.User.LastLogin, "el login exitoso debe reportar LastLogin")

	userID, role, err := pkgjwt.Parse(testJWTSecret, out.Token)
	require.NoError(t, err, "el token emitido debe ser un JWT válido")
	assert.Equal(t, u.ID, userID)
	assert.Equal(t, entity.RoleStandard, role)
}

// Caso crítico anti-enumeración: usuario inexistente y contraseña incorrecta
// deben producir respuestas HTTP byte a byte idénticas.
func TestLogin_RespuestaIdenticaParaAmbosFallos(t *testing.T) {
	f := newAPIFixture(t)
	f.seedAPIUser(t, "ana@ejemplo.com", "contraseña-valida", entity.RoleStandard)

	respInexistente := f.postJSON(t, "/api/auth/login", dto.LoginRequest{
		Email: "nadie@ejemplo.com", Password: "da-igual",
	}, "")
	respIncorrecta := f.postJSON(t, "/api/auth/login", dto.LoginRequest{
		Email: "ana@ejemplo.com", Password: "contraseña-mala",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, respInexistente.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, respIncorrecta.StatusCode)
	assert.Equal(t, readBody(t, respInexistente), readBody(t, respIncorrecta),
		"los cuerpos deben ser idénticos para no revelar si la cuenta existe")
}

func TestLogin_MetodoFacial(t *testing.T) {
	f := newAPIFixture(t)
	u := f.seedAPIUser(t, "ana@ejemplo.com", "contraseña-valida", entity.RoleStandard)
	descriptor := []float64{0.11, 0.52, 0.93, 0.24, 0.75}
	require.NoError(t, f.users.UpdatePartial(context.Background(), u.ID, patchFacial(descriptor)))

	resp := f.postJSON(t, "/api/auth/login", dto.LoginRequest{
		Email:      "ana@ejemplo.com",
		Method:     entity.LoginMethodFacial,
		Descriptor: []float64{0.12, 0.51, 0.94, 0.23, 0.76},
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, readBody(t, resp))
}

// Cuenta en modo password no acepta descriptores aunque tenga enrolamiento.
func TestLogin_FacialConCuentaEnModoPassword_Rechazado(t *testing.T) {
	f := newAPIFixture(t)
	u := f.seedAPIUser(t, "ana@ejemplo.com", "contraseña-valida", entity.RoleStandard)
	descriptor := []float64{0.11, 0.52, 0.93, 0.24, 0.75}
	patch := patchFacial(descriptor)
	method := entity.LoginMethodPassword
	patch.LoginMethod = &method
	require.NoError(t, f.users.UpdatePartial(context.Background(), u.ID, patch))

	resp := f.postJSON(t, "/api/auth/login", dto.LoginRequest{
		Email:      "ana@ejemplo.com",
		Method:     entity.LoginMethodFacial,
		Descriptor: descriptor,
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests flujo de restablecimiento vía HTTP
// ──────────────────────────────────────────────────────────────────────────────

// El endpoint responde 202 con cuerpo idéntico exista o no la cuenta.
func TestForgotPassword_Siempre202(t *testing.T) {
	f := newAPIFixture(t)
	f.seedAPIUser(t, "ana@ejemplo.com", "contraseña-valida", entity.RoleStandard)

	respExiste := f.postJSON(t, "/api/auth/forgot-password", dto.ForgotPasswordRequest{Email: "ana@ejemplo.com"}, "")
	respNoExiste := f.postJSON(t, "/api/auth/forgot-password", dto.ForgotPasswordRequest{Email: "nadie@ejemplo.com"}, "")

	assert.Equal(t, http.StatusAccepted, respExiste.StatusCode)
	assert.Equal(t, http.StatusAccepted, respNoExiste.StatusCode)
	assert.Equal(t, readBody(t, respExiste), readBody(t, respNoExiste),
		"la respuesta no debe revelar si la cuenta existe")
}

func TestResetPassword_FlujoCompletoVíaHTTP(t *testing.T) {
	f := newAPIFixture(t)
	f.seedAPIUser(t, "ana@ejemplo.com", "contraseña-vieja", entity.RoleStandard)

	resp := f.postJSON(t, "/api/auth/forgot-password", dto.ForgotPasswordRequest{Email: "ana@ejemplo.com"}, "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	var token string
	select {
	case token = <-f.notifier.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó el token de restablecimiento")
	}

	resp = f.postJSON(t, "/api/auth/reset-password", dto.ResetPasswordRequest{
		Token: token, NewPassword: "contraseña-nueva",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, readBody(t, resp))

	// La contraseña nueva sirve para login; la vieja ya no.
	resp = f.postJSON(t, "/api/auth/login", dto.LoginRequest{Email: "ana@ejemplo.com", Password: "contraseña-nueva"}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = f.postJSON(t, "/api/auth/login", dto.LoginRequest{Email: "ana@ejemplo.com", Password: "contraseña-vieja"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// El token es de un solo uso.
	resp = f.postJSON(t, "/api/auth/reset-password", dto.ResetPasswordRequest{
		Token: token, NewPassword: "otra-contraseña-más",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "INVALID_TOKEN")
}

func TestResetPassword_TokenInventado_400(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.postJSON(t, "/api/auth/reset-password", dto.ResetPasswordRequest{
		Token: "token-inventado", NewPassword: "contraseña-nueva",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "INVALID_TOKEN")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests rutas administrativas — RBAC sobre /api/users
// ──────────────────────────────────────────────────────────────────────────────

func TestAdminCreaUsuario_YDuplicadoDa409(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.seedAPIUser(t, "admin@ejemplo.com", "contraseña-admin", entity.RoleAdmin)
	tok, err := pkgjwt.Generate(testJWTSecret, admin.ID, admin.Role, testIssuer, testExpMin)
	require.NoError(t, err)

	resp := f.postJSON(t, "/api/users/", dto.CreateUserRequest{
		Email:       "Nuevo@Ejemplo.com",
		Password:    "contraseña-valida",
		DisplayName: "Usuario Nuevo",
	}, "Bearer "+tok)
	createdBody := readBody(t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode, createdBody)

	var created dto.UserResponse
	require.NoError(t, json.Unmarshal([]byte(createdBody), &created))
	assert.Equal(t, "nuevo@ejemplo.com", created.Email, "el email debe guardarse normalizado")
	assert.Equal(t, entity.RoleStandard, created.Role, "sin rol explícito se asigna standard")

	// El mismo email (con otra capitalización) debe chocar.
	resp = f.postJSON(t, "/api/users/", dto.CreateUserRequest{
		Email:    "NUEVO@ejemplo.com",
		Password: "contraseña-valida",
	}, "Bearer "+tok)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "EMAIL_EXISTS")
}

func TestUsuarioStandard_NoPuedeCrearUsuarios(t *testing.T) {
	f := newAPIFixture(t)
	u := f.seedAPIUser(t, "ana@ejemplo.com", "contraseña-valida", entity.RoleStandard)
	tok, err := pkgjwt.Generate(testJWTSecret, u.ID, u.Role, testIssuer, testExpMin)
	require.NoError(t, err)

	resp := f.postJSON(t, "/api/users/", dto.CreateUserRequest{
		Email:    "otro@ejemplo.com",
		Password: "contraseña-valida",
	}, "Bearer "+tok)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
