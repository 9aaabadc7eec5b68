package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/rack-inventory/internal/domain"
	"github.com/jhoicas/rack-inventory/internal/domain/entity"
	"github.com/jhoicas/rack-inventory/internal/domain/lot"
	"github.com/jhoicas/rack-inventory/internal/domain/repository"
)

// ScanInput lote de códigos escaneados dentro de un flujo de bodega.
type ScanInput struct {
	Type         string
	Codes        []string
	PackageCodes []string
	WarehouseID  int64
}

// ScanResult lotes que coinciden con el flujo y códigos solicitados que no coincidieron.
type ScanResult struct {
	Matched               []*entity.Lot
	UnmatchedCodes        []string
	UnmatchedPackageCodes []string
}

// Scan filtra los lotes escaneados por los estados que admite el flujo. Los códigos sin coincidencia
// (ítem, estado o bodega equivocados) se reportan sin error.
func (uc *LotUseCase) Scan(ctx context.Context, in ScanInput) (*ScanResult, error) {
	workflow := strings.TrimSpace(in.Type)
	if workflow == "" || in.WarehouseID <= 0 {
		return nil, domain.ErrInvalidWorkflowParameters
	}
	statuses, ok := lot.AllowedStatuses(workflow)
	if !ok {
		return nil, domain.ErrInvalidWorkflowParameters
	}
	codes := uniqueNonEmpty(in.Codes)
	packages := uniqueNonEmpty(in.PackageCodes)
	res := &ScanResult{Matched: []*entity.Lot{}, UnmatchedCodes: []string{}, UnmatchedPackageCodes: []string{}}
	if len(codes) == 0 && len(packages) == 0 {
		return res, nil
	}

	lots, err := uc.lots.FindForScan(ctx, repository.LotFilter{
		WarehouseID:  in.WarehouseID,
		Codes:        codes,
		PackageCodes: packages,
		Statuses:     statuses,
	})
	if err != nil {
		return nil, fmt.Errorf("find lots for scan: %w", err)
	}

	matchedCodes := make(map[string]bool, len(lots))
	matchedPackages := make(map[string]bool, len(lots))
	for _, l := range lots {
		matchedCodes[l.Code] = true
		if l.PackageCode != nil {
			matchedPackages[*l.PackageCode] = true
		}
	}
	res.Matched = lots
	for _, c := range codes {
		if !matchedCodes[c] {
			res.UnmatchedCodes = append(res.UnmatchedCodes, c)
		}
	}
	for _, p := range packages {
		if !matchedPackages[p] {
			res.UnmatchedPackageCodes = append(res.UnmatchedPackageCodes, p)
		}
	}
	uc.metrics.AddScanUnmatched(workflow, len(res.UnmatchedCodes)+len(res.UnmatchedPackageCodes))
	return res, nil
}

// uniqueNonEmpty conserva el orden de aparición.
func uniqueNonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
