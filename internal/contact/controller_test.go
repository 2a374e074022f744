package contact

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnaconcept/site/internal/domain"
	"github.com/fnaconcept/site/internal/metrics"
)

// mockSubmitter records calls and returns SubmitFunc's result.
type mockSubmitter struct {
	SubmitFunc func(ctx context.Context, data domain.ContactFormData) ([]byte, error)
	calls      []domain.ContactFormData
}

func (m *mockSubmitter) Submit(ctx context.Context, data domain.ContactFormData) ([]byte, error) {
	m.calls = append(m.calls, data)
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, data)
	}
	return []byte("ok"), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validationFailures(t *testing.T) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.ContactValidationFailures.Write(&m))
	return m.GetCounter().GetValue()
}

func TestController_InvalidFormIsNotSent(t *testing.T) {
	before := validationFailures(t)
	sub := &mockSubmitter{}
	data := validData()
	data.Prenom = ""
	c := NewController(NewContactFormFrom(data), sub, discardLogger())
	c.Form().Field(domain.FieldNom).Dirty = false

	c.OnSubmit(context.Background())

	assert.Empty(t, sub.calls)
	assert.Equal(t, domain.ContactFormState{}, c.State())
	for _, name := range domain.Fields {
		assert.True(t, c.Form().Field(name).Touched, name)
	}
	assert.Equal(t, "Le prénom est requis", c.FieldError(domain.FieldPrenom))
	assert.True(t, c.HasFieldError(domain.FieldPrenom))
	assert.False(t, c.HasFieldError(domain.FieldNom))
	assert.Equal(t, before+1, validationFailures(t))
}

func TestController_EmptyFormTouchesEveryField(t *testing.T) {
	sub := &mockSubmitter{}
	c := NewController(nil, sub, nil)

	c.OnSubmit(context.Background())

	assert.Empty(t, sub.calls)
	assert.False(t, c.State().IsSubmitting)
	for _, name := range domain.Fields {
		assert.NotEmpty(t, c.FieldError(name), name)
	}
}

func TestController_Success(t *testing.T) {
	var sawSubmitting bool
	var c *Controller
	sub := &mockSubmitter{
		SubmitFunc: func(ctx context.Context, data domain.ContactFormData) ([]byte, error) {
			sawSubmitting = c.State().IsSubmitting
			return []byte("<html>merci</html>"), nil
		},
	}
	c = NewController(NewContactFormFrom(validData()), sub, discardLogger())

	c.OnSubmit(context.Background())

	require.Len(t, sub.calls, 1)
	assert.Equal(t, validData(), sub.calls[0])
	assert.True(t, sawSubmitting)
	assert.Equal(t, domain.ContactFormState{SubmitSuccess: true}, c.State())
	assert.Equal(t, domain.ContactFormData{}, c.Form().Data())
	assert.Equal(t, "", c.FieldError(domain.FieldNom))
}

func TestController_Failures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "timeout",
			err:  domain.Timeout(context.DeadlineExceeded, "submission.submit"),
			want: "La demande a pris trop de temps. Veuillez réessayer.",
		},
		{
			name: "network",
			err:  domain.Network(errors.New("connection refused"), "submission.submit"),
			want: "Impossible de soumettre le formulaire. Veuillez vérifier votre connexion et réessayer.",
		},
		{
			name: "server error",
			err:  domain.Upstream("submission.submit", 500),
			want: "Une erreur s'est produite lors de l'envoi du formulaire. Veuillez réessayer.",
		},
		{
			name: "not found",
			err:  domain.Upstream("submission.submit", 404),
			want: "Une erreur s'est produite lors de l'envoi du formulaire. Veuillez réessayer.",
		},
		{
			name: "untyped error",
			err:  errors.New("boom"),
			want: "Une erreur s'est produite lors de l'envoi du formulaire. Veuillez réessayer.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &mockSubmitter{
				SubmitFunc: func(context.Context, domain.ContactFormData) ([]byte, error) {
					return nil, tt.err
				},
			}
			c := NewController(NewContactFormFrom(validData()), sub, discardLogger())

			c.OnSubmit(context.Background())

			assert.Equal(t, domain.ContactFormState{
				SubmitError:  true,
				ErrorMessage: tt.want,
			}, c.State())
			assert.Equal(t, validData(), c.Form().Data(), "form is kept for retry")
		})
	}
}

func TestController_RetryClearsPreviousError(t *testing.T) {
	fail := true
	sub := &mockSubmitter{
		SubmitFunc: func(context.Context, domain.ContactFormData) ([]byte, error) {
			if fail {
				return nil, domain.Upstream("submission.submit", 502)
			}
			return nil, nil
		},
	}
	c := NewController(NewContactFormFrom(validData()), sub, discardLogger())

	c.OnSubmit(context.Background())
	require.True(t, c.State().SubmitError)

	fail = false
	c.OnSubmit(context.Background())

	assert.Equal(t, domain.ContactFormState{SubmitSuccess: true}, c.State())
	assert.Len(t, sub.calls, 2)
}

func TestSubmitterFunc(t *testing.T) {
	var got domain.ContactFormData
	s := SubmitterFunc(func(_ context.Context, data domain.ContactFormData) ([]byte, error) {
		got = data
		return []byte("ok"), nil
	})

	body, err := s.Submit(context.Background(), validData())

	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), body)
	assert.Equal(t, validData(), got)
}
