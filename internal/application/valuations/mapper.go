package valuations

import (
	"github.com/jhoicas/valoracion-api/internal/application/dto"
	"github.com/jhoicas/valoracion-api/internal/domain/entity"
	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
	"github.com/jhoicas/valoracion-api/pkg/money"
)

// resultOf devuelve el total congelado si está finalizada; si no, el cálculo vigente.
func resultOf(rec *valuation.Record) valuation.Result {
	if rec.IsFinalized() && rec.Frozen != nil {
		return *rec.Frozen
	}
	return rec.Result()
}

func preview(rec *valuation.Record) dto.CalculateResponse {
	return dto.CalculateResponse{
		Result:  dto.NewResultDTO(resultOf(rec)),
		Lines:   dto.NewAnswerLines(rec.Answers),
		Missing: rec.Missing(),
	}
}

func toValuationResponse(v *entity.Valuation) *dto.ValuationResponse {
	return &dto.ValuationResponse{
		ID:                v.ID,
		OwnerID:           v.OwnerID,
		Details:           dto.DetailsFromDomain(v.Details),
		ReportStyle:       v.ReportStyle,
		Status:            string(v.Record.Status),
		BaseItemValue:     v.Record.BaseItemValue,
		OriginCertificate: string(v.Record.OriginCertificate),
		Lines:             dto.NewAnswerLines(v.Record.Answers),
		Result:            dto.NewResultDTO(resultOf(&v.Record)),
		Missing:           v.Record.Missing(),
		FinalizedAt:       v.Record.FinalizedAt,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
	}
}

func toSummary(v *entity.Valuation) dto.ValuationSummaryDTO {
	final := resultOf(&v.Record).FinalValue
	return dto.ValuationSummaryDTO{
		ID:             v.ID,
		Status:         string(v.Record.Status),
		OperationType:  v.Details.OperationType,
		Exporter:       v.Details.Exporter,
		Importer:       v.Details.Importer,
		Incoterm:       v.Details.Incoterm,
		Currency:       v.Details.Currency,
		FinalValue:     final,
		FinalValueText: money.Format(final),
		UpdatedAt:      v.UpdatedAt,
	}
}

func toDraftResponse(d valuation.Draft) *dto.DraftResponse {
	return &dto.DraftResponse{
		ValuationID: d.ValuationID,
		Details:     dto.DetailsFromDomain(d.Details),
		Preview:     preview(&d.Record),
		SavedAt:     d.SavedAt,
	}
}
