package domain

// Entity type tags used for strategy dispatch and pending-judgment identity
const (
	EntityFiling       = "Filing"
	EntityRegistration = "Registration"
	EntityRecall       = "Recall"
	EntityEvent        = "Event"
	EntityCustoms      = "Customs"
	EntityGuidance     = "Guidance"
)

// Record is a harvested regulatory record that can be judged. Concrete types
// carry their own named fields; strategies read and write them directly
// instead of going through reflection.
type Record interface {
	RecordID() int64
	RecordType() string
}

// DeviceFiling is a premarket filing (510(k)-style application)
type DeviceFiling struct {
	ID           int64
	DeviceName   string
	Applicant    string
	DeviceClass  string
	ProductCode  string
	Summary      string
	DecisionDate string

	RiskLevel RiskLevel
	Remark    string
}

func (f *DeviceFiling) RecordID() int64    { return f.ID }
func (f *DeviceFiling) RecordType() string { return EntityFiling }

// DeviceRegistration is an establishment/device registration record
type DeviceRegistration struct {
	ID               int64
	DeviceName       string
	Manufacturer     string
	ProprietaryName  string
	RegulationNumber string

	RiskLevel RiskLevel
	Remark    string
}

func (r *DeviceRegistration) RecordID() int64    { return r.ID }
func (r *DeviceRegistration) RecordType() string { return EntityRegistration }

// DeviceRecall is a device recall record
type DeviceRecall struct {
	ID                 int64
	DeviceName         string
	RecallingFirm      string
	ProductDescription string
	RecallStatus       string

	RiskLevel RiskLevel
	Remark    string
}

func (r *DeviceRecall) RecordID() int64    { return r.ID }
func (r *DeviceRecall) RecordType() string { return EntityRecall }

// DeviceEvent is an adverse event report
type DeviceEvent struct {
	ID               int64
	BrandName        string
	GenericName      string
	ManufacturerName string
	EventType        string

	RiskLevel RiskLevel
	Remark    string
}

func (e *DeviceEvent) RecordID() int64    { return e.ID }
func (e *DeviceEvent) RecordType() string { return EntityEvent }

// CustomsCase is a customs classification ruling
type CustomsCase struct {
	ID               int64
	CaseNumber       string
	GoodsDescription string
	HsCode           string
	ImporterName     string

	RiskLevel RiskLevel
	Remark    string
}

func (c *CustomsCase) RecordID() int64    { return c.ID }
func (c *CustomsCase) RecordType() string { return EntityCustoms }

// GuidanceDocument is a regulator guidance publication
type GuidanceDocument struct {
	ID            int64
	Title         string
	Topic         string
	Summary       string
	IssuingAgency string

	RiskLevel RiskLevel
	Remark    string
}

func (g *GuidanceDocument) RecordID() int64    { return g.ID }
func (g *GuidanceDocument) RecordType() string { return EntityGuidance }

// CrawlRecord is one raw record handed over by a crawl batch before any
// classification has happened
type CrawlRecord struct {
	SourceID string `json:"sourceId"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// TaggedRecord is a crawl record after the cheap keyword first pass
type TaggedRecord struct {
	CrawlRecord
	Relevant          bool     `json:"relevant"`
	MatchedCategories []string `json:"matchedCategories,omitempty"`
	HighRisk          bool     `json:"highRisk"`
}
