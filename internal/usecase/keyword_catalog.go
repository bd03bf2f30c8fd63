package usecase

import "strings"

// Keyword category names. The set is closed at build time; "all" is the
// synthetic union category.
const (
	CategoryCertification   = "certification"
	CategoryRecall          = "recall"
	CategoryRegulation      = "regulation"
	CategoryHsCode          = "hscode"
	CategoryCompetitor      = "competitor"
	CategoryProductFunction = "product_function"
	CategoryStandard        = "standard"
	CategorySafety          = "safety"
	CategoryEnvironmental   = "environmental"
	CategoryProduct         = "product"
	CategoryIndustry        = "industry"
	CategoryGeneral         = "general"
	CategoryAll             = "all"
)

// KeywordCatalog owns the categorized keyword lists used for first-pass
// relevance tagging. It is an immutable value built once at startup and
// shared by all matchers; there is no mutation API.
type KeywordCatalog struct {
	order      []string
	categories map[string][]string
}

// NewKeywordCatalog builds the default catalog for the skin-analysis device
// monitoring domain. Keyword lists mix English and Chinese terms because the
// monitored sources publish in both.
func NewKeywordCatalog() *KeywordCatalog {
	c := &KeywordCatalog{categories: make(map[string][]string)}

	c.add(CategoryCertification,
		"认证", "证书", "注册", "备案", "许可", "批准", "医疗器械", "医疗设备",
		"CE认证", "FDA认证", "NMPA认证", "510(k)认证", "监管机构", "合规",
		"certification", "certificate", "registration", "license", "approval",
		"medical device", "medical equipment", "FDA approval", "CE certification",
		"510(k) clearance", "NMPA registration", "PMDA approval",
		"regulatory authority", "FDA", "NMPA", "EUDAMED", "MFDS", "TGA",
		"ANVISA", "compliance", "pre-approval",
	)
	c.add(CategoryRecall,
		"召回", "撤回", "下架", "停止销售", "医疗器械召回", "缺陷", "安全隐患",
		"违规", "处罚", "警告", "风险预警", "标签不符", "未注册", "退货", "投诉",
		"recall", "withdraw", "remove from market", "stop sale",
		"medical device recall", "defect", "safety hazard", "violation",
		"penalty", "warning", "FDA recall", "CE non-compliance", "mislabeling",
		"unregistered", "import violation", "complaint",
	)
	c.add(CategoryRegulation,
		"法规", "规定", "条例", "政策", "通知", "公告", "医疗器械法规", "MDR",
		"分类目录", "法规更新", "生效", "施行", "废止", "诊断", "治疗", "皮肤检测",
		"regulation", "rule", "policy", "notice", "announcement",
		"medical device regulation", "general wellness", "border line product",
		"device definition", "classification catalog", "effective",
		"enforcement", "repeal", "diagnosis", "treatment", "skin analysis",
	)
	c.add(CategoryHsCode,
		"HS编码", "海关编码", "9018", "8543.70", "9031.49", "9027", "8525",
		"HS code",
	)
	c.add(CategoryCompetitor,
		"VISIA", "Canfield", "OBSERV", "DermaFlash", "Dermalogica", "Janus",
		"Callegari", "AIMYSKIN",
	)
	c.add(CategoryProductFunction,
		"测肤仪", "皮肤分析仪", "皮肤检测仪", "面部成像",
		"Skin Analysis", "Skin Analyzer", "Skin Scanner",
		"3D skin imaging system", "3D imaging", "Facial Imaging",
		"Skin pigmentation analysis", "skin elasticity analysis",
	)
	c.add(CategoryStandard,
		"标准", "规范", "指南", "ISO", "医疗器械标准", "行业标准", "国际标准",
		"standard", "specification", "guideline", "medical device standard",
		"industry standard", "international standard", "mandatory standard",
		"IMDRF guideline",
	)
	c.add(CategorySafety,
		"安全", "风险", "防护", "医疗安全", "设备安全", "隐患", "预警", "应急",
		"safety", "risk", "protection", "medical safety", "device safety",
		"hazard", "early warning", "emergency", "biosafety",
	)
	c.add(CategoryEnvironmental,
		"环保", "环境", "污染", "节能", "医疗废弃物",
		"environmental", "pollution", "energy saving", "emission reduction",
		"medical waste", "green production",
	)
	c.add(CategoryProduct,
		"产品", "设备", "仪器", "器械", "系统", "进口", "出口", "品牌", "型号",
		"美容仪器", "皮肤检测设备", "诊断设备",
		"product", "equipment", "instrument", "device", "system", "import",
		"export", "cosmetic instrument", "skin analysis device",
		"diagnostic equipment",
	)
	c.add(CategoryIndustry,
		"医疗行业", "美容行业", "医疗器械行业", "研发", "生产", "销售", "皮肤护理",
		"medical industry", "cosmetic industry", "medical device industry",
		"regulatory industry", "R&D", "production", "sales",
	)
	c.add(CategoryGeneral,
		"重要", "紧急", "更新", "变化", "风险评估", "趋势分析", "报告", "监测",
		"important", "urgent", "update", "change", "risk assessment",
		"trend analysis", "report", "monitoring", "analysis",
	)

	return c
}

func (c *KeywordCatalog) add(category string, keywords ...string) {
	c.order = append(c.order, category)
	c.categories[category] = keywords
}

// Categories returns category names in declaration order, excluding "all"
func (c *KeywordCatalog) Categories() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Keywords returns a copy of the keyword list for one category. The "all"
// category is the concatenation of every list in declaration order. Unknown
// categories yield an empty list.
func (c *KeywordCatalog) Keywords(category string) []string {
	if category == CategoryAll {
		var all []string
		for _, name := range c.order {
			all = append(all, c.categories[name]...)
		}
		return all
	}
	src, ok := c.categories[category]
	if !ok {
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Counts returns the keyword count per category, for the operator UI
func (c *KeywordCatalog) Counts() map[string]int {
	counts := make(map[string]int, len(c.order))
	for _, name := range c.order {
		counts[name] = len(c.categories[name])
	}
	return counts
}

// Search returns every keyword containing the term, case-insensitively,
// across all categories in declaration order
func (c *KeywordCatalog) Search(term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	var hits []string
	for _, name := range c.order {
		for _, kw := range c.categories[name] {
			if strings.Contains(strings.ToLower(kw), term) {
				hits = append(hits, kw)
			}
		}
	}
	return hits
}

// highRiskTerms flag records that deserve immediate attention in the first pass
var highRiskTerms = []string{
	"death", "serious", "critical", "emergency", "recall", "withdrawal",
	"malfunction", "failure", "defect", "hazard", "danger", "toxic",
}

// ContainsHighRiskKeywords reports whether any keyword carries a high-risk term
func (c *KeywordCatalog) ContainsHighRiskKeywords(keywords []string) bool {
	for _, kw := range keywords {
		lower := strings.ToLower(kw)
		for _, risk := range highRiskTerms {
			if strings.Contains(lower, risk) {
				return true
			}
		}
	}
	return false
}
