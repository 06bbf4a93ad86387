package valuation

import "github.com/shopspring/decimal"

// PenaltyRate es la tasa presunta aplicada cuando falta el certificado de origen (1 %).
var PenaltyRate = decimal.RequireFromString("0.01")

// Input son los datos que consume el calculador.
type Input struct {
	BaseItemValue     decimal.Decimal
	Answers           Answers
	OriginCertificate AnswerStatus
}

// Result es el desglose calculado; nunca se almacena por separado del registro
// salvo como total congelado al finalizar.
type Result struct {
	BaseItemValue     decimal.Decimal `json:"base_item_value"`
	TotalAdditions    decimal.Decimal `json:"total_additions"`
	TotalDeductions   decimal.Decimal `json:"total_deductions"`
	Preliminary       decimal.Decimal `json:"preliminary"`
	CompliancePenalty decimal.Decimal `json:"compliance_penalty"`
	FinalValue        decimal.Decimal `json:"final_value"`
}

// Calculate aplica las reglas de valoración:
//
//	adiciones   = Σ montos de preguntas "addition" respondidas "yes"
//	deducciones = Σ montos de preguntas "deduction" respondidas "yes"
//	preliminar  = base + adiciones − deducciones
//	penalidad   = preliminar × 1 % si el certificado de origen es "no", si no 0
//	final       = preliminar + penalidad
//
// Es total: respuestas "no", sin responder o sin monto aportan cero, y el
// resultado negativo no se recorta.
func Calculate(in Input) Result {
	additions := decimal.Zero
	deductions := decimal.Zero

	for _, q := range questions {
		a, ok := in.Answers[q.ID]
		if !ok || a.Status != StatusYes || a.Amount == nil {
			continue
		}
		switch q.Category {
		case CategoryAddition:
			additions = additions.Add(*a.Amount)
		case CategoryDeduction:
			deductions = deductions.Add(*a.Amount)
		}
	}

	preliminary := in.BaseItemValue.Add(additions).Sub(deductions)

	penalty := decimal.Zero
	if in.OriginCertificate == StatusNo {
		penalty = preliminary.Mul(PenaltyRate)
	}

	return Result{
		BaseItemValue:     in.BaseItemValue,
		TotalAdditions:    additions,
		TotalDeductions:   deductions,
		Preliminary:       preliminary,
		CompliancePenalty: penalty,
		FinalValue:        preliminary.Add(penalty),
	}
}

// Line es un renglón del desglose por pregunta, en orden oficial.
type Line struct {
	Question RegulatoryQuestion `json:"question"`
	Answer   Answer             `json:"answer"`
	// Contributes es el monto efectivamente sumado o restado (cero si no aplica).
	Contributes decimal.Decimal `json:"contributes"`
}

// Breakdown devuelve las 17 preguntas con su respuesta y aporte, ordenadas por ordinal.
func Breakdown(answers Answers) []Line {
	lines := make([]Line, 0, QuestionCount)
	for ord := 1; ord <= QuestionCount; ord++ {
		for _, q := range questions {
			if q.Ordinal != ord {
				continue
			}
			a, ok := answers[q.ID]
			if !ok {
				a = Answer{Status: StatusUnanswered}
			}
			c := decimal.Zero
			if q.Category != CategoryGeneral && a.Status == StatusYes && a.Amount != nil {
				c = *a.Amount
			}
			lines = append(lines, Line{Question: q, Answer: a, Contributes: c})
		}
	}
	return lines
}
