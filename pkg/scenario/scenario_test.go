package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScenario(t *testing.T) {
	sc, err := Default()
	require.NoError(t, err)

	assert.Len(t, sc.Management.Roles, 7)
	assert.Len(t, sc.Academic.Roles, 18)
	assert.Len(t, sc.OtherExpenses.Items, 4)
	assert.Len(t, sc.Divisions.Items, 3)
	assert.Len(t, sc.Baseline.Divisions, 3)
	assert.Equal(t, float64(1000), sc.Management.SalaryStep)
	assert.Equal(t, float64(500), sc.Academic.SalaryStep)
	assert.Equal(t, "AEL+CFL (6th-10th)", sc.Divisions.Items[2].Division)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: small
divisions:
  items:
    - {division: Primary, students: 10, fee: 1000}
`), 0o644))

	sc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "small", sc.Name)
	require.Len(t, sc.Divisions.Items, 1)
	assert.Equal(t, 10, sc.Divisions.Items[0].Students)
}

func TestParseRejectsInvalidMonths(t *testing.T) {
	_, err := Parse([]byte(`
management:
  roles:
    - {role: Guard, monthly_salary: 5000, months: 0}
`))
	require.Error(t, err)
}
