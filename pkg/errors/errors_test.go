package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errEmployeeMissing = stderrors.New("employee not found")

func TestNotFound_KindAndCause(t *testing.T) {
	err := NotFound(errEmployeeMissing, "Employee with ID '%s' not found", "abc")

	assert.True(t, stderrors.Is(err, ErrNotFound))
	assert.True(t, stderrors.Is(err, errEmployeeMissing))
	assert.False(t, stderrors.Is(err, ErrConflict))
	assert.Equal(t, "Employee with ID 'abc' not found", Message(err))
	assert.Equal(t, "Employee with ID 'abc' not found", err.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestConflict_SurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("mark attendance: %w", Conflict(nil, "Attendance already marked"))

	assert.True(t, stderrors.Is(err, ErrConflict))
	assert.Equal(t, "Attendance already marked", Message(err))
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
}

func TestValidation_Fields(t *testing.T) {
	err := Validation(FieldError{Field: "date", Message: "Attendance date cannot be in the future"})

	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(err))
	assert.Equal(t, []FieldError{{Field: "date", Message: "Attendance date cannot be in the future"}}, Fields(err))
}

func TestHTTPStatus_Unclassified(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(stderrors.New("connection reset")))
	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
	assert.Equal(t, "", Message(stderrors.New("connection reset")))
	assert.Nil(t, Fields(stderrors.New("x")))
}
