package clfingerprint

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSessionFingerprintDeterministic(t *testing.T) {
	a := SessionFingerprint("1.2.3.4", "UA-A", "x.com", "p1")
	b := SessionFingerprint("1.2.3.4", "UA-A", "x.com", "p1")

	assert.Equal(t, a, b)
	assert.Len(t, a, 64) // sha256 hex
}

func TestSessionFingerprintVariesPerInput(t *testing.T) {
	base := SessionFingerprint("1.2.3.4", "UA-A", "x.com", "p1")

	assert.NotEqual(t, base, SessionFingerprint("1.2.3.5", "UA-A", "x.com", "p1"))
	assert.NotEqual(t, base, SessionFingerprint("1.2.3.4", "UA-B", "x.com", "p1"))
	assert.NotEqual(t, base, SessionFingerprint("1.2.3.4", "UA-A", "y.com", "p1"))
	assert.NotEqual(t, base, SessionFingerprint("1.2.3.4", "UA-A", "x.com", "p2"))
}

func TestSessionFingerprintUnknownIP(t *testing.T) {
	// Une IP vide est remplacée par le marqueur, jamais d'erreur
	a := SessionFingerprint("", "UA-A", "x.com", "p1")
	b := SessionFingerprint(UnknownIP, "UA-A", "x.com", "p1")

	assert.Equal(t, a, b)
}

func TestIPHashScopedPerProject(t *testing.T) {
	// Le même visiteur sur deux projets ne doit pas être corrélable
	assert.NotEqual(t, IPHash("1.2.3.4", "p1"), IPHash("1.2.3.4", "p2"))
	assert.Equal(t, IPHash("1.2.3.4", "p1"), IPHash("1.2.3.4", "p1"))
}

func TestClientIPHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/consents", nil)

	c.Request.Header.Set("X-Real-IP", "9.8.7.6")
	assert.Equal(t, "9.8.7.6", ClientIP(c))

	c.Request.Header.Del("X-Real-IP")
	c.Request.Header.Set("X-Forwarded-For", "5.6.7.8, 10.0.0.1")
	assert.Equal(t, "5.6.7.8", ClientIP(c))
}
