package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `validate:"required"`
	Limit int    `validate:"min=1,max=100"`
}

func TestGetValidator_Singleton(t *testing.T) {
	require.Same(t, GetValidator(), GetValidator())
}

func TestIssues(t *testing.T) {
	err := GetValidator().Struct(sample{Limit: 500})
	require.Error(t, err)

	issues := Issues(err)
	require.ElementsMatch(t, []FieldIssue{
		{Field: "Name", Issue: "failed on tag 'required'"},
		{Field: "Limit", Issue: "failed on tag 'max' with param '100'"},
	}, issues)

	require.Nil(t, Issues(errors.New("plain")))
	require.NoError(t, GetValidator().Struct(sample{Name: "x", Limit: 1}))
}
