package valuation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownQuestion = errors.New("pregunta regulatoria inexistente")
	ErrInvalidStatus   = errors.New("estado de respuesta inválido")
	ErrFinalized       = errors.New("la valoración está finalizada; reábrala para editar")
	ErrNotFinalized    = errors.New("la valoración no está finalizada")
	ErrIncomplete      = errors.New("faltan respuestas para finalizar la valoración")
)

// AnswerStatus es la respuesta a una pregunta; también se usa para el
// certificado de origen (tri-estado).
type AnswerStatus string

const (
	StatusYes        AnswerStatus = "yes"
	StatusNo         AnswerStatus = "no"
	StatusUnanswered AnswerStatus = "unanswered"
)

// ParseAnswerStatus acepta "yes", "no", "unanswered" (y "" como unanswered).
func ParseAnswerStatus(s string) (AnswerStatus, error) {
	switch AnswerStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusYes:
		return StatusYes, nil
	case StatusNo:
		return StatusNo, nil
	case StatusUnanswered, "":
		return StatusUnanswered, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Answer es la respuesta a una pregunta. Amount solo existe con Status=yes en
// preguntas que requieren monto.
type Answer struct {
	Status AnswerStatus     `json:"status"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// Answers mapea id de pregunta → respuesta.
type Answers map[string]Answer

// RecordStatus es el estado del ciclo de vida del registro.
type RecordStatus string

const (
	RecordDraft     RecordStatus = "draft"
	RecordFinalized RecordStatus = "finalized"
)

// Record es el agregado que consume el calculador.
type Record struct {
	BaseItemValue     decimal.Decimal `json:"base_item_value"`
	Answers           Answers         `json:"answers"`
	OriginCertificate AnswerStatus    `json:"origin_certificate"`
	Status            RecordStatus    `json:"status"`
	Frozen            *Result         `json:"frozen_result,omitempty"`
	FinalizedAt       *time.Time      `json:"finalized_at,omitempty"`
}

// NewDraft crea un borrador con las 17 preguntas sin responder.
func NewDraft() Record {
	answers := make(Answers, QuestionCount)
	for _, q := range questions {
		answers[q.ID] = Answer{Status: StatusUnanswered}
	}
	return Record{
		BaseItemValue:     decimal.Zero,
		Answers:           answers,
		OriginCertificate: StatusUnanswered,
		Status:            RecordDraft,
	}
}

// IsFinalized indica si el registro está cerrado.
func (r *Record) IsFinalized() bool { return r.Status == RecordFinalized }

// SetAnswer registra la respuesta a una pregunta. El monto se descarta si la
// respuesta no es "yes" o si la pregunta no lleva monto.
func (r *Record) SetAnswer(id string, status AnswerStatus, amount *decimal.Decimal) error {
	if r.IsFinalized() {
		return ErrFinalized
	}
	q, ok := QuestionByID(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
	}
	status, err := ParseAnswerStatus(string(status))
	if err != nil {
		return err
	}
	a := Answer{Status: status}
	if status == StatusYes && q.RequiresAmount && amount != nil {
		v := *amount
		a.Amount = &v
	}
	if r.Answers == nil {
		r.Answers = make(Answers, QuestionCount)
	}
	r.Answers[id] = a
	return nil
}

// SetBaseValue cambia el valor declarado de la mercadería.
func (r *Record) SetBaseValue(v decimal.Decimal) error {
	if r.IsFinalized() {
		return ErrFinalized
	}
	r.BaseItemValue = v
	return nil
}

// SetOriginCertificate registra si se presentó certificado de origen.
func (r *Record) SetOriginCertificate(status AnswerStatus) error {
	if r.IsFinalized() {
		return ErrFinalized
	}
	s, err := ParseAnswerStatus(string(status))
	if err != nil {
		return err
	}
	r.OriginCertificate = s
	return nil
}

// OriginCertificateField es el nombre que Missing usa para el certificado de origen.
const OriginCertificateField = "origin_certificate"

// Missing devuelve los ids sin responder, ordenados por ordinal, más
// OriginCertificateField si el certificado está sin responder.
func (r *Record) Missing() []string {
	var qs []RegulatoryQuestion
	for _, q := range questions {
		if a, ok := r.Answers[q.ID]; !ok || a.Status == StatusUnanswered || a.Status == "" {
			qs = append(qs, q)
		}
	}
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].Ordinal < qs[j].Ordinal })
	out := make([]string, 0, len(qs)+1)
	for _, q := range qs {
		out = append(out, q.ID)
	}
	if r.OriginCertificate == StatusUnanswered || r.OriginCertificate == "" {
		out = append(out, OriginCertificateField)
	}
	return out
}

// IncompleteError detalla qué falta para finalizar. errors.Is(err, ErrIncomplete) es true.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s: %s", ErrIncomplete.Error(), strings.Join(e.Missing, ", "))
}

func (e *IncompleteError) Unwrap() error { return ErrIncomplete }

// Finalize valida que las 17 preguntas y el certificado estén respondidos,
// calcula el resultado y lo congela. Finalizar dos veces es un error.
func (r *Record) Finalize(now time.Time) (Result, error) {
	if r.IsFinalized() {
		return Result{}, ErrFinalized
	}
	if missing := r.Missing(); len(missing) > 0 {
		return Result{}, &IncompleteError{Missing: missing}
	}
	res := r.Result()
	t := now.UTC()
	r.Frozen = &res
	r.FinalizedAt = &t
	r.Status = RecordFinalized
	return res, nil
}

// Reopen devuelve un registro finalizado a borrador y descarta el total congelado.
func (r *Record) Reopen() error {
	if !r.IsFinalized() {
		return ErrNotFinalized
	}
	r.Status = RecordDraft
	r.Frozen = nil
	r.FinalizedAt = nil
	return nil
}

// Result calcula el resultado vigente del registro.
func (r *Record) Result() Result {
	return Calculate(Input{
		BaseItemValue:     r.BaseItemValue,
		Answers:           r.Answers,
		OriginCertificate: r.OriginCertificate,
	})
}

// Clone devuelve una copia profunda del registro.
func (r Record) Clone() Record {
	out := r
	out.Answers = make(Answers, len(r.Answers))
	for k, a := range r.Answers {
		if a.Amount != nil {
			v := *a.Amount
			a.Amount = &v
		}
		out.Answers[k] = a
	}
	if r.Frozen != nil {
		f := *r.Frozen
		out.Frozen = &f
	}
	if r.FinalizedAt != nil {
		t := *r.FinalizedAt
		out.FinalizedAt = &t
	}
	return out
}
