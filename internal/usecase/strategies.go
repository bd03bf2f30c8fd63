package usecase

import (
	"fmt"

	"github.com/certwatch/backend/internal/domain"
)

// Per-entity-type strategies. Each one knows the concrete record struct it
// serves and touches its fields by name.

type filingStrategy struct{}

func (filingStrategy) EntityType() string { return domain.EntityFiling }

func (filingStrategy) BuildDescription(rec domain.Record) DeviceDescription {
	f := rec.(*domain.DeviceFiling)
	return DeviceDescription{
		DeviceName:   f.DeviceName,
		Manufacturer: f.Applicant,
		EntityType:   domain.EntityFiling,
		Text: fmt.Sprintf("Device: %s, Applicant: %s, Class: %s, Product code: %s, Summary: %s",
			f.DeviceName, f.Applicant, f.DeviceClass, f.ProductCode, f.Summary),
	}
}

func (filingStrategy) BlacklistCandidates(rec domain.Record) []string {
	return manufacturerBlacklistCandidates(rec.(*domain.DeviceFiling).Applicant)
}

func (filingStrategy) ApplyVerdict(rec domain.Record, result domain.JudgeResult) {
	f := rec.(*domain.DeviceFiling)
	f.RiskLevel = SuggestedRisk(result)
	f.Remark = appendRemark(f.Remark, FormatRemark(result, "premarket filing"))
}

type registrationStrategy struct{}

func (registrationStrategy) EntityType() string { return domain.EntityRegistration }

func (registrationStrategy) BuildDescription(rec domain.Record) DeviceDescription {
	r := rec.(*domain.DeviceRegistration)
	return DeviceDescription{
		DeviceName:   r.DeviceName,
		Manufacturer: r.Manufacturer,
		EntityType:   domain.EntityRegistration,
		Text: fmt.Sprintf("Device: %s, Proprietary name: %s, Manufacturer: %s, Regulation: %s",
			r.DeviceName, r.ProprietaryName, r.Manufacturer, r.RegulationNumber),
	}
}

func (registrationStrategy) BlacklistCandidates(rec domain.Record) []string {
	return manufacturerBlacklistCandidates(rec.(*domain.DeviceRegistration).Manufacturer)
}

func (registrationStrategy) ApplyVerdict(rec domain.Record, result domain.JudgeResult) {
	r := rec.(*domain.DeviceRegistration)
	r.RiskLevel = SuggestedRisk(result)
	r.Remark = appendRemark(r.Remark, FormatRemark(result, "device registration"))
}

type recallStrategy struct{}

func (recallStrategy) EntityType() string { return domain.EntityRecall }

func (recallStrategy) BuildDescription(rec domain.Record) DeviceDescription {
	r := rec.(*domain.DeviceRecall)
	return DeviceDescription{
		DeviceName:   r.DeviceName,
		Manufacturer: r.RecallingFirm,
		EntityType:   domain.EntityRecall,
		Text: fmt.Sprintf("Device: %s, Product description: %s, Recall status: %s",
			r.DeviceName, r.ProductDescription, r.RecallStatus),
	}
}

func (recallStrategy) BlacklistCandidates(rec domain.Record) []string {
	return manufacturerBlacklistCandidates(rec.(*domain.DeviceRecall).RecallingFirm)
}

func (recallStrategy) ApplyVerdict(rec domain.Record, result domain.JudgeResult) {
	r := rec.(*domain.DeviceRecall)
	r.RiskLevel = SuggestedRisk(result)
	r.Remark = appendRemark(r.Remark, FormatRemark(result, "device recall"))
}

type eventStrategy struct{}

func (eventStrategy) EntityType() string { return domain.EntityEvent }

func (eventStrategy) BuildDescription(rec domain.Record) DeviceDescription {
	e := rec.(*domain.DeviceEvent)
	return DeviceDescription{
		DeviceName:   e.BrandName,
		Manufacturer: e.ManufacturerName,
		EntityType:   domain.EntityEvent,
		Text: fmt.Sprintf("Brand: %s, Generic name: %s, Manufacturer: %s, Event type: %s",
			e.BrandName, e.GenericName, e.ManufacturerName, e.EventType),
	}
}

func (eventStrategy) BlacklistCandidates(rec domain.Record) []string {
	return manufacturerBlacklistCandidates(rec.(*domain.DeviceEvent).ManufacturerName)
}

func (eventStrategy) ApplyVerdict(rec domain.Record, result domain.JudgeResult) {
	e := rec.(*domain.DeviceEvent)
	e.RiskLevel = SuggestedRisk(result)
	e.Remark = appendRemark(e.Remark, FormatRemark(result, "adverse event"))
}

type customsStrategy struct{}

func (customsStrategy) EntityType() string { return domain.EntityCustoms }

func (customsStrategy) BuildDescription(rec domain.Record) DeviceDescription {
	c := rec.(*domain.CustomsCase)
	return DeviceDescription{
		DeviceName:   c.GoodsDescription,
		Manufacturer: c.ImporterName,
		EntityType:   domain.EntityCustoms,
		Text: fmt.Sprintf("Ruling: %s, Goods: %s, HS code: %s, Importer: %s",
			c.CaseNumber, c.GoodsDescription, c.HsCode, c.ImporterName),
	}
}

func (customsStrategy) BlacklistCandidates(rec domain.Record) []string {
	return manufacturerBlacklistCandidates(rec.(*domain.CustomsCase).ImporterName)
}

func (customsStrategy) ApplyVerdict(rec domain.Record, result domain.JudgeResult) {
	c := rec.(*domain.CustomsCase)
	c.RiskLevel = SuggestedRisk(result)
	c.Remark = appendRemark(c.Remark, FormatRemark(result, "customs ruling"))
}

type guidanceStrategy struct{}

func (guidanceStrategy) EntityType() string { return domain.EntityGuidance }

func (guidanceStrategy) BuildDescription(rec domain.Record) DeviceDescription {
	g := rec.(*domain.GuidanceDocument)
	return DeviceDescription{
		DeviceName: g.Title,
		EntityType: domain.EntityGuidance,
		Text: fmt.Sprintf("Title: %s, Topic: %s, Agency: %s, Summary: %s",
			g.Title, g.Topic, g.IssuingAgency, g.Summary),
	}
}

func (guidanceStrategy) BlacklistCandidates(rec domain.Record) []string {
	// guidance documents carry no manufacturer to blacklist
	return nil
}

func (guidanceStrategy) ApplyVerdict(rec domain.Record, result domain.JudgeResult) {
	g := rec.(*domain.GuidanceDocument)
	g.RiskLevel = SuggestedRisk(result)
	g.Remark = appendRemark(g.Remark, FormatRemark(result, "guidance document"))
}
