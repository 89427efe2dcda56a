package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/clinic-console/pkg/errors"
)

type staticToken struct {
	token string
	ok    bool
}

func (s staticToken) Token() (string, bool) { return s.token, s.ok }

func newBackend(t *testing.T, register func(r *gin.Engine)) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientInjectsBearerTokenAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/patients", func(c *gin.Context) {
			gotAuth = c.GetHeader("Authorization")
			gotRequestID = c.GetHeader(HeaderXRequestID)
			c.JSON(http.StatusOK, gin.H{"data": []gin.H{{"id": 1}}})
		})
	})

	client := NewClient(Config{BaseURL: srv.URL + "/api/"}, WithTokenSource(staticToken{token: "abc", ok: true}))
	raw, err := client.Get(context.Background(), "/patients")
	require.NoError(t, err)

	assert.Equal(t, "Bearer abc", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.JSONEq(t, `[{"id":1}]`, string(Unwrap(raw)))
}

func TestClientOmitsTokenWithoutSession(t *testing.T) {
	var gotAuth string
	srv := newBackend(t, func(r *gin.Engine) {
		r.DELETE("/rooms/:id", func(c *gin.Context) {
			gotAuth = c.GetHeader("Authorization")
			c.Status(http.StatusNoContent)
		})
	})

	client := NewClient(Config{BaseURL: srv.URL}, WithTokenSource(staticToken{}))
	raw, err := client.Delete(context.Background(), "rooms/3")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Empty(t, raw)
}

func TestClientSendsJSONBody(t *testing.T) {
	var got map[string]interface{}
	srv := newBackend(t, func(r *gin.Engine) {
		r.POST("/services", func(c *gin.Context) {
			require.NoError(t, c.ShouldBindJSON(&got))
			c.JSON(http.StatusCreated, gin.H{"id": 9, "nom": got["nom"]})
		})
	})

	client := NewClient(Config{BaseURL: srv.URL})
	raw, err := client.Post(context.Background(), "/services", map[string]string{"nom": "Cardiologie"})
	require.NoError(t, err)
	assert.Equal(t, "Cardiologie", got["nom"])
	assert.JSONEq(t, `{"id":9,"nom":"Cardiologie"}`, string(raw))
}

func TestMessagePriority(t *testing.T) {
	srv := newBackend(t, func(r *gin.Engine) {
		r.GET("/with-message", func(c *gin.Context) {
			c.JSON(http.StatusConflict, gin.H{"message": "Room already occupied"})
		})
		r.GET("/nested-error", func(c *gin.Context) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"code": 400, "message": "Invalid date"}})
		})
		r.GET("/bare", func(c *gin.Context) {
			c.Status(http.StatusNotFound)
		})
	})
	client := NewClient(Config{BaseURL: srv.URL})

	_, err := client.Get(context.Background(), "/with-message")
	assert.Equal(t, "Room already occupied", Message(err))

	_, err = client.Get(context.Background(), "/nested-error")
	assert.Equal(t, "Invalid date", Message(err))

	_, err = client.Get(context.Background(), "/bare")
	assert.Equal(t, "Not Found", Message(err))

	unreachable := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	_, err = unreachable.Get(context.Background(), "/patients")
	assert.Equal(t, NetworkErrorText, Message(err))

	assert.Equal(t, FallbackErrorText, Message(errors.New("boom")))
	assert.Equal(t, "", Message(nil))
}

func TestAsRequestErrorKeepsAppErrors(t *testing.T) {
	validation := apperrors.Validation("patient id is required", nil)
	assert.Same(t, validation, AsRequestError(validation))

	wrapped := AsRequestError(&ResponseError{Status: http.StatusInternalServerError, StatusText: "Internal Server Error"})
	assert.True(t, apperrors.Is(wrapped, apperrors.ErrRequest))
	assert.Equal(t, "Internal Server Error", wrapped.Error())
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	calls := 0
	srv := newBackend(t, func(r *gin.Engine) {
		r.GET("/flaky", func(c *gin.Context) {
			calls++
			c.Status(http.StatusBadGateway)
		})
	})
	client := NewClient(Config{BaseURL: srv.URL, BreakerFailures: 2})

	for i := 0; i < 2; i++ {
		_, err := client.Get(context.Background(), "/flaky")
		require.Error(t, err)
	}
	_, err := client.Get(context.Background(), "/flaky")
	require.Error(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, NetworkErrorText, Message(err))
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	calls := 0
	srv := newBackend(t, func(r *gin.Engine) {
		r.GET("/missing", func(c *gin.Context) {
			calls++
			c.JSON(http.StatusNotFound, gin.H{"message": "Patient introuvable"})
		})
	})
	client := NewClient(Config{BaseURL: srv.URL, BreakerFailures: 1})

	for i := 0; i < 3; i++ {
		_, err := client.Get(context.Background(), "/missing")
		assert.Equal(t, "Patient introuvable", Message(err))
	}
	assert.Equal(t, 3, calls)
}

func TestDecodeListCoercesNonArrays(t *testing.T) {
	type rec struct {
		ID int `json:"id"`
	}

	items, err := DecodeList[rec](json.RawMessage(`{"data":{"data":[{"id":1},{"id":2}],"pagination":{}}}`))
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = DecodeList[rec](json.RawMessage(`{"message":"no patients"}`))
	assert.True(t, apperrors.Is(err, apperrors.ErrDataShape))
	assert.NotNil(t, items)
	assert.Empty(t, items)

	items, err = DecodeList[rec](nil)
	assert.Error(t, err)
	assert.Empty(t, items)

	items, err = DecodeList[rec](json.RawMessage(`[{"id":"not-a-number"}]`))
	assert.True(t, apperrors.Is(err, apperrors.ErrDataShape))
	assert.Empty(t, items)
}

func TestDecodeOne(t *testing.T) {
	type rec struct {
		Nom string `json:"nom"`
	}
	r, err := DecodeOne[rec](json.RawMessage(`{"data":{"nom":"Salle 4"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Salle 4", r.Nom)

	_, err = DecodeOne[rec](json.RawMessage(`[1,2]`))
	assert.True(t, apperrors.Is(err, apperrors.ErrDataShape))
}
