package suggestion

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/jobsearch/internal/domain"
	"github.com/kailas-cloud/jobsearch/internal/domain/job"
)

func TestParseCategory(t *testing.T) {
	for _, s := range []string{"", "all", "title", "company", "location"} {
		c, err := ParseCategory(s)
		require.NoError(t, err, s)
		if s == "" {
			assert.Equal(t, CategoryAll, c)
		}
	}

	_, err := ParseCategory("salary")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidQuery))
}

func TestCategory_Fields(t *testing.T) {
	assert.Equal(t, job.LookupFields, CategoryAll.Fields())
	assert.Equal(t, []job.Field{job.FieldCompany}, CategoryCompany.Fields())
}

func TestSuggestions_SetAndTotal(t *testing.T) {
	s := Empty("dev")
	assert.Zero(t, s.Total())
	assert.NotNil(t, s.Titles)

	s.Set(job.FieldTitle, []string{"Developer", "DevOps Engineer"})
	s.Set(job.FieldLocation, nil)
	assert.Equal(t, 2, s.Total())
	assert.NotNil(t, s.Locations)
}
