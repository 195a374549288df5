package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"shelter-ops/internal/platform/logger"
	"shelter-ops/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	handler, _ := router.NewRouter(router.Options{
		AuthVerifier:      nil, // modo dev: X-Debug-*
		MetricsRegisterer: prometheus.NewRegistry(),
	})
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_ShelterFlow(t *testing.T) {
	ts := newTestServer(t)

	adminID := "user-admin"
	staffID := "user-staff"
	fosterID := "user-foster"
	volunteerID := "user-volunteer"

	// 1) Admin crea la organización y queda como admin activo
	orgID := createOrg(t, ts.URL, adminID, "Refugio Patitas")

	// 2) Staff invitado pero todavía pendiente => no puede operar
	staffMemberID := inviteMember(t, ts.URL, adminID, orgID, staffID, "staff@patitas.org", "staff")
	{
		st, _ := doReq(t, ts.URL, "POST", "/orgs/"+orgID+"/animals", staffID, map[string]any{
			"name": "Luna", "species": "dog",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 intake before accepting invite, got %d", st)
		}
	}

	// 3) Staff acepta la membresía
	acceptMembership(t, ts.URL, staffID, staffMemberID)

	// 4) Staff registra el ingreso de un animal
	animalID := createAnimal(t, ts.URL, staffID, orgID, map[string]any{
		"name":        "Luna",
		"species":     "dog",
		"breed":       "mixed",
		"sex":         "female",
		"intake_kind": "stray",
	})

	// 5) Foster y voluntario entran a la org
	fosterMemberID := inviteMember(t, ts.URL, adminID, orgID, fosterID, "foster@patitas.org", "foster")
	acceptMembership(t, ts.URL, fosterID, fosterMemberID)
	volMemberID := inviteMember(t, ts.URL, adminID, orgID, volunteerID, "vol@patitas.org", "volunteer")
	acceptMembership(t, ts.URL, volunteerID, volMemberID)

	// 6) Staff coloca el animal en foster
	var placementID string
	{
		st, body := doReq(t, ts.URL, "POST", "/orgs/"+orgID+"/fosters", staffID, map[string]any{
			"animal_id": animalID,
			"member_id": fosterMemberID,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 start placement, got %d body=%s", st, string(body))
		}
		placementID = idFrom(t, body)
	}
	{
		a := getJSON(t, ts.URL, "/orgs/"+orgID+"/animals/"+animalID, staffID)
		if a["status"] != "fostered" {
			t.Fatalf("expected animal fostered after placement, got %v", a["status"])
		}
	}

	// 7) El foster con el animal a cargo puede registrar historial médico
	{
		st, body := doReq(t, ts.URL, "POST", "/orgs/"+orgID+"/animals/"+animalID+"/records", fosterID, map[string]any{
			"type":        "VACCINE",
			"occurred_at": time.Now().UTC().Format(time.RFC3339),
			"title":       "Rabia anual",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 record by foster, got %d body=%s", st, string(body))
		}
	}

	// 8) El voluntario no ve el historial médico
	{
		st, _ := doReq(t, ts.URL, "GET", "/orgs/"+orgID+"/animals/"+animalID+"/records", volunteerID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 records for volunteer, got %d", st)
		}
	}

	// 9) El voluntario registra sus horas
	{
		st, body := doReq(t, ts.URL, "POST", "/orgs/"+orgID+"/activities", volunteerID, map[string]any{
			"kind":  "walking",
			"hours": 2.5,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 log activity, got %d body=%s", st, string(body))
		}
	}

	// 10) Termina el foster, el animal vuelve a available
	{
		st, body := doReq(t, ts.URL, "POST", "/orgs/"+orgID+"/fosters/"+placementID+"/end", staffID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 end placement, got %d body=%s", st, string(body))
		}
		a := getJSON(t, ts.URL, "/orgs/"+orgID+"/animals/"+animalID, staffID)
		if a["status"] != "available" {
			t.Fatalf("expected animal available after end, got %v", a["status"])
		}
	}

	// 11) Flujo de adopción: solicitud -> aprobación (admin) -> cierre
	var appID string
	{
		st, body := doReq(t, ts.URL, "POST", "/orgs/"+orgID+"/adoptions", staffID, map[string]any{
			"applicant_name":  "María Pérez",
			"applicant_email": "maria@example.com",
			"animal_id":       animalID,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 submit application, got %d body=%s", st, string(body))
		}
		appID = idFrom(t, body)
	}
	{
		// staff no puede aprobar
		st, _ := doReq(t, ts.URL, "POST", "/orgs/"+orgID+"/adoptions/"+appID+"/approve", staffID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 approve by staff, got %d", st)
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/orgs/"+orgID+"/adoptions/"+appID+"/approve", adminID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 approve by admin, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/orgs/"+orgID+"/adoptions/"+appID+"/complete", staffID, map[string]any{})
		if st != http.StatusOK {
			t.Fatalf("expected 200 complete adoption, got %d body=%s", st, string(body))
		}
		a := getJSON(t, ts.URL, "/orgs/"+orgID+"/animals/"+animalID, staffID)
		if a["status"] != "adopted" {
			t.Fatalf("expected animal adopted, got %v", a["status"])
		}
	}

	// 12) Reportes: ver sí, exportar CSV no (tier free)
	{
		st, _ := doReq(t, ts.URL, "GET", "/orgs/"+orgID+"/reports/animals-by-status", staffID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 report view on free tier, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/orgs/"+orgID+"/reports/animals-by-status?format=csv", staffID, nil)
		if st != http.StatusPaymentRequired {
			t.Fatalf("expected 402 csv export on free tier, got %d", st)
		}
	}

	// 13) Webhook de pago sube la org a premium y habilita el export
	{
		st, body := postWebhook(t, ts.URL, map[string]any{
			"id":   "evt_test_1",
			"type": "checkout.session.completed",
			"data": map[string]any{
				"object": map[string]any{"client_reference_id": orgID},
			},
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 webhook, got %d body=%s", st, string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/orgs/"+orgID+"/reports/animals-by-status?format=csv", staffID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 csv export on premium, got %d", st)
		}
	}

	// 14) Replay del mismo evento => 200 sin efecto
	{
		st, _ := postWebhook(t, ts.URL, map[string]any{
			"id":   "evt_test_1",
			"type": "checkout.session.completed",
			"data": map[string]any{
				"object": map[string]any{"client_reference_id": orgID},
			},
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 webhook replay, got %d", st)
		}
	}

	// 15) La suscripción queda visible solo para admin
	{
		st, _ := doReq(t, ts.URL, "GET", "/orgs/"+orgID+"/billing/subscription", staffID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 subscription for staff, got %d", st)
		}
		sub := getJSON(t, ts.URL, "/orgs/"+orgID+"/billing/subscription", adminID)
		if sub["tier"] != "premium" {
			t.Fatalf("expected premium tier after webhook, got %v", sub["tier"])
		}
	}
}

func TestHTTP_CrossOrgIsolation(t *testing.T) {
	ts := newTestServer(t)

	adminA := "admin-a"
	adminB := "admin-b"

	orgA := createOrg(t, ts.URL, adminA, "Refugio A")
	orgB := createOrg(t, ts.URL, adminB, "Refugio B")

	animalA := createAnimal(t, ts.URL, adminA, orgA, map[string]any{
		"name":    "Rocky",
		"species": "dog",
	})

	// admin de B no es miembro de A => 403 en todo el árbol de A
	{
		st, _ := doReq(t, ts.URL, "GET", "/orgs/"+orgA+"/animals/"+animalA, adminB, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 cross-org read, got %d", st)
		}
	}

	// animal de A referenciado bajo la org B => 404, no filtra existencia
	{
		st, _ := doReq(t, ts.URL, "GET", "/orgs/"+orgB+"/animals/"+animalA, adminB, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 foreign animal under own org, got %d", st)
		}
	}
}

func createOrg(t *testing.T, baseURL, userID, name string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/orgs", userID, map[string]any{
		"name":          name,
		"city":          "Lima",
		"contact_email": "hola@refugio.org",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create org, got %d body=%s", st, string(body))
	}
	return idFrom(t, body)
}

func inviteMember(t *testing.T, baseURL, callerID, orgID, userID, email, role string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/orgs/"+orgID+"/members", callerID, map[string]any{
		"user_id": userID,
		"email":   email,
		"role":    role,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 invite member, got %d body=%s", st, string(body))
	}
	return idFrom(t, body)
}

func acceptMembership(t *testing.T, baseURL, userID, memberID string) {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/memberships/"+memberID+"/accept", userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 accept membership, got %d body=%s", st, string(body))
	}
}

func createAnimal(t *testing.T, baseURL, userID, orgID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/orgs/"+orgID+"/animals", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 intake animal, got %d body=%s", st, string(body))
	}
	return idFrom(t, body)
}

func getJSON(t *testing.T, baseURL, path, userID string) map[string]any {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", path, userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 GET %s, got %d body=%s", path, st, string(body))
	}
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal %s: %v", path, err)
	}
	return out
}

func postWebhook(t *testing.T, baseURL string, event map[string]any) (int, []byte) {
	t.Helper()

	b, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	res, err := http.Post(baseURL+"/billing/webhook", "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("post webhook: %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	return res.StatusCode, body
}

func idFrom(t *testing.T, body []byte) string {
	t.Helper()

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("missing id in body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}

// warnRecorder captura los Warn emitidos durante el armado del router.
type warnRecorder struct {
	warns []string
}

func (l *warnRecorder) With(logger.Fields) logger.Logger { return l }
func (l *warnRecorder) Debug(string, logger.Fields)      {}
func (l *warnRecorder) Info(string, logger.Fields)       {}
func (l *warnRecorder) Warn(msg string, _ logger.Fields) { l.warns = append(l.warns, msg) }
func (l *warnRecorder) Error(string, logger.Fields)      {}

func TestNewRouterWarnsWhenWebhookSecretMissing(t *testing.T) {
	rec := &warnRecorder{}
	_, _ = router.NewRouter(router.Options{
		Logger:            rec,
		MetricsRegisterer: prometheus.NewRegistry(),
	})

	for _, w := range rec.warns {
		if strings.Contains(w, "unsigned webhooks") {
			return
		}
	}
	t.Fatalf("expected a warning about unsigned webhook mode, got %v", rec.warns)
}

func TestNewRouterNoWarnWithWebhookSecret(t *testing.T) {
	rec := &warnRecorder{}
	_, _ = router.NewRouter(router.Options{
		Logger:              rec,
		MetricsRegisterer:   prometheus.NewRegistry(),
		StripeWebhookSecret: "whsec_test",
	})

	for _, w := range rec.warns {
		if strings.Contains(w, "unsigned webhooks") {
			t.Fatalf("unexpected unsigned-webhook warning with secret set: %v", rec.warns)
		}
	}
}
