package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/dispatch-rota/pkg/core/model"
)

func TestParseRole(t *testing.T) {
	role, err := parseRole("Shift Supervisor")
	require.NoError(t, err)
	assert.Equal(t, model.RoleShiftSupervisor, role)

	_, err = parseRole("Volunteer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown role "Volunteer"`)

	_, err = parseRole("dispatcher")
	assert.Error(t, err, "roles are case sensitive")
}
