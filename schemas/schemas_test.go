package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	schemaFiles := []string{
		"experience_response.schema.json",
		"project_response.schema.json",
		"skills_response.schema.json",
	}

	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := schemaFS.ReadFile(schemaFile)
			require.NoError(t, err, "should be able to read embedded schema")

			var v interface{}
			err = json.Unmarshal(data, &v)
			assert.NoError(t, err, "schema file should be valid JSON: %s", schemaFile)
		})
	}
}

func TestValidate_ValidExperienceResponse(t *testing.T) {
	doc := `{
		"status": "success",
		"output": [
			{"experience_company_name": "Acme", "resume_points": ["Built things"]}
		]
	}`
	assert.NoError(t, Validate(ExperienceResponse, []byte(doc)))
}

func TestValidate_MissingRequiredField(t *testing.T) {
	doc := `{
		"status": "success",
		"output": [{"resume_points": ["Built things"]}]
	}`
	err := Validate(ExperienceResponse, []byte(doc))
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Errors)
	assert.Contains(t, ve.Error(), "experience_company_name")
}

func TestValidate_ValidSkillsResponse(t *testing.T) {
	doc := `{
		"status": "success",
		"output": [{"skill_category": "Languages", "skills": ["Go"]}]
	}`
	assert.NoError(t, Validate(SkillsResponse, []byte(doc)))
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nope", []byte(`{}`))
	var le *SchemaLoadError
	require.ErrorAs(t, err, &le)
}

func TestValidate_ProjectResponseRejectsWrongTypes(t *testing.T) {
	doc := `{
		"status": "success",
		"output": [{"project_name": "P", "project_points": "not an array"}]
	}`
	err := Validate(ProjectResponse, []byte(doc))
	assert.Error(t, err)
}
