package bootstrap

import (
	"github.com/stretchr/testify/mock"

	"github.com/dreamware/namesrv/internal/config"
)

// mockController records lifecycle calls. Configuration returns reg
// without going through the mock so tests need not expect it.
type mockController struct {
	mock.Mock
	reg *config.Registry
}

func (m *mockController) Initialize() bool {
	return m.Called().Bool(0)
}

func (m *mockController) Start() error {
	return m.Called().Error(0)
}

func (m *mockController) Shutdown() {
	m.Called()
}

func (m *mockController) Configuration() *config.Registry {
	return m.reg
}
