package afip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/valoracion-api/pkg/afip"
)

func TestValidateCUIT_Validos(t *testing.T) {
	for _, c := range []string{"20-12345678-6", "20123456786", "30-71234567-1", "30.71234567.1"} {
		assert.NoError(t, afip.ValidateCUIT(c), c)
	}
}

func TestValidateCUIT_Invalidos(t *testing.T) {
	cases := map[string]string{
		"digito incorrecto": "20-12345678-5",
		"largo":             "20-123456789-6",
		"corto":             "2012345",
		"prefijo":           "99-12345678-6",
		"vacio":             "",
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, afip.ValidateCUIT(c))
		})
	}
}

func TestComputeCUITVerificationDigit(t *testing.T) {
	d, err := afip.ComputeCUITVerificationDigit("2012345678")
	require.NoError(t, err)
	assert.Equal(t, byte('6'), d)
}

func TestFormatCUIT(t *testing.T) {
	assert.Equal(t, "20-12345678-6", afip.FormatCUIT("20123456786"))
	assert.Equal(t, "123", afip.FormatCUIT("123"))
}

func TestIsIncoterm(t *testing.T) {
	assert.True(t, afip.IsIncoterm("fob"))
	assert.True(t, afip.IsIncoterm(" CIF "))
	assert.False(t, afip.IsIncoterm("XYZ"))
}
