package capsule

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/h2non/gock.v1"
)

func newTestConnection(t *testing.T) *Connection {
	conn, err := NewConnection(Config{
		BaseURL:   testBaseURL + "/",
		APIToken:  "tok",
		UserAgent: "capsulecrm-go-test",
	}, WithLogger(zap.NewExample()))
	require.NoError(t, err)
	return conn
}

func TestConnectionSendsAuthAndHeaders(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).
		Get("/api/kase/42").
		MatchHeader("Authorization", "^Basic dG9rOng=$").
		MatchHeader("Accept", "application/json").
		MatchHeader("User-Agent", "capsulecrm-go-test").
		HeaderPresent(requestIDHeader).
		Reply(200).
		BodyString(`{"kase":{"id":"42"}}`)

	conn := newTestConnection(t)
	body, err := conn.Get(ctx, "/api/kase/42")

	require.NoError(t, err)
	assert.JSONEq(t, `{"kase":{"id":"42"}}`, string(body))
	assert.True(t, gock.IsDone())
}

func TestConnectionPostSendsJSON(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).
		Post("/api/party/7/kase").
		MatchType("json").
		BodyString(`{"kase":{"name":"Test"}}`).
		Reply(201).
		BodyString(`{"kase":{"id":1}}`)

	conn := newTestConnection(t)
	_, err := conn.Post(ctx, "/api/party/7/kase", []byte(`{"kase":{"name":"Test"}}`))

	require.NoError(t, err)
	assert.True(t, gock.IsDone())
}

func TestConnectionPostRejectsNilBody(t *testing.T) {
	gock.Intercept()
	defer gock.Off()

	conn := newTestConnection(t)
	_, err := conn.Post(ctx, "/api/party/7/kase", nil)

	assert.Error(t, err)
	assert.False(t, gock.HasUnmatchedRequest())
}

func TestConnectionReturnsAPIErrorOnNon2xx(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).
		Put("/api/kase/42").
		Reply(422).
		JSON(map[string]string{"message": "name is required"})

	conn := newTestConnection(t)
	_, err := conn.Put(ctx, "/api/kase/42", []byte(`{"kase":{}}`))

	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.MethodPut, apiErr.Method)
	assert.Equal(t, "/api/kase/42", apiErr.Path)
	assert.Equal(t, 422, apiErr.StatusCode)
	assert.Equal(t, "name is required", apiErr.Message)
	assert.Equal(t, "PUT /api/kase/42: 422 name is required", apiErr.Error())
}

func TestConnectionAPIErrorFallsBackToStatusText(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).Get("/api/kase/9").Reply(404)

	conn := newTestConnection(t)
	_, err := conn.Get(ctx, "/api/kase/9")

	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "Not Found")
}

func TestConnectionDelete(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).Delete("/api/kase/42").Reply(200)
	gock.New(testBaseURL).Delete("/api/kase/43").Reply(500)

	conn := newTestConnection(t)

	ok, err := conn.Delete(ctx, "/api/kase/42")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = conn.Delete(ctx, "/api/kase/43")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.True(t, gock.IsDone())
}

func TestConnectionWrapsTransportErrors(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).Get("/api/kase/1").ReplyError(assert.AnError)

	conn := newTestConnection(t)
	_, err := conn.Get(ctx, "/api/kase/1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "GET /api/kase/1")
	assert.Contains(t, err.Error(), assert.AnError.Error())
}

func TestConnectionPostReadsIDFromLocation(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).
		Post("/api/party/7/kase").
		Reply(201).
		SetHeader("Location", testBaseURL+"/api/kase/42")

	conn := newTestConnection(t)
	body, err := conn.Post(ctx, "/api/party/7/kase", []byte(`{"kase":{"name":"Test"}}`))

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":42}`, string(body))
	assert.True(t, gock.IsDone())
}

func TestConnectionPostRejectsLocationWithoutID(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).
		Post("/api/party/7/kase").
		Reply(201).
		SetHeader("Location", testBaseURL+"/api/kase/")

	conn := newTestConnection(t)
	_, err := conn.Post(ctx, "/api/party/7/kase", []byte(`{"kase":{"name":"Test"}}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not end in an id")
}

func TestIDFromLocation(t *testing.T) {
	id, err := idFromLocation("https://api.capsulecrm.com/api/kase/42/")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id.Int64())

	_, err = idFromLocation("https://api.capsulecrm.com/api/kase/abc")
	assert.Error(t, err)
}

func TestConnectionLogsServiceName(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).Get("/api/kase/42").Reply(200).BodyString(`{"kase":{"id":"42"}}`)

	core, logs := observer.New(zap.DebugLevel)
	conn, err := NewConnection(Config{BaseURL: testBaseURL, ServiceName: "capsule-sync"}, WithLogger(zap.New(core)))
	require.NoError(t, err)

	_, err = conn.Get(ctx, "/api/kase/42")
	require.NoError(t, err)

	entries := logs.FilterMessage("capsule request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "capsule-sync", entries[0].ContextMap()["service"])
	assert.Equal(t, int64(200), entries[0].ContextMap()["status"])
}
