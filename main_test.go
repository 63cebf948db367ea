package capsule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://capsule.test"

var ctx = context.Background()

// mockGateway records every request a Case makes
type mockGateway struct {
	mock.Mock
}

func bytesArg(args mock.Arguments, i int) []byte {
	if args.Get(i) == nil {
		return nil
	}
	return args.Get(i).([]byte)
}

func (m *mockGateway) Get(ctx context.Context, path string) ([]byte, error) {
	args := m.Called(path)
	return bytesArg(args, 0), args.Error(1)
}

func (m *mockGateway) Post(ctx context.Context, path string, body []byte) ([]byte, error) {
	args := m.Called(path, body)
	return bytesArg(args, 0), args.Error(1)
}

func (m *mockGateway) Put(ctx context.Context, path string, body []byte) ([]byte, error) {
	args := m.Called(path, body)
	return bytesArg(args, 0), args.Error(1)
}

func (m *mockGateway) Delete(ctx context.Context, path string) (bool, error) {
	args := m.Called(path)
	return args.Bool(0), args.Error(1)
}

// setupMock returns a CaseService over a mock gateway
func setupMock() (*CaseService, *mockGateway) {
	gw := &mockGateway{}
	return NewCaseService(gw, NewCaseSerializer(), NewGatewayResolver(gw)), gw
}

// setup returns a CaseService talking HTTP to testBaseURL, for use with gock
func setup(t *testing.T) *CaseService {
	setDefaults()
	cfg := LoadConfig()
	cfg.BaseURL = testBaseURL
	cfg.APIToken = "tok"
	svc, err := NewClient(cfg)
	require.NoError(t, err)
	return svc
}
