package shaders

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceAssemblesEveryProgram(t *testing.T) {
	for _, id := range All() {
		t.Run(id.String(), func(t *testing.T) {
			vs, fs, err := Source(id)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(vs, header))
			assert.True(t, strings.HasPrefix(fs, header))
			assert.Contains(t, vs, "void main()")
			assert.Contains(t, fs, "void main()")
		})
	}
}

func TestSourceUnknownProgram(t *testing.T) {
	_, _, err := Source(numPrograms)
	assert.Error(t, err)
}

func TestProgramsDeclareContractUniforms(t *testing.T) {
	cases := map[ID][]string{
		Forward:    {UModel, UView, UProjection, UCameraEye, ULightPosition, ULightPower, UDiffuse, UEta, UAlpha, UKs, UHasAnimation, UBoneTransform},
		GBuffer:    {UDiffuse, UEta, UAlpha, UKs},
		PointLight: {SNormal, SDiffuse, SAlpha, SDepth, SShadowMap, ULightView, ULightProj, UViewProjInv},
		Ambient:    {ULightRadiance, ULightRange},
		SunSky:     {USkyA, USkyB, USkyC, USkyD, USkyE, UZenith, UThetaSun},
		Blur:       {SImage, UDir, UStdev, URadius, ULevel},
		Merge:      {SImage, SOriginalImage},
		SRGB:       {UExposure},
		Mirror:     {SSkyboxReflection},
		Flat:       {UAmbientCoeff, UDiffuseCoeff, UFlatLightDir},
	}
	for id, uniforms := range cases {
		vs, fs, err := Source(id)
		require.NoError(t, err)
		for _, u := range uniforms {
			assert.Regexp(t, `\s`+regexp.QuoteMeta(u)+`[;\[]`, vs+fs, "%v lacks %s", id, u)
		}
	}
}

func TestIDString(t *testing.T) {
	assert.Equal(t, "pointlight", PointLight.String())
	assert.Equal(t, "ID(200)", ID(200).String())
	assert.Len(t, All(), int(numPrograms))
}
