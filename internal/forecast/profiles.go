package forecast

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/models"
)

const (
	ProfileCybersecurity       = "cybersecurity"
	ProfileSoftwareEngineering = "software_engineering"
	ProfileDataAnalytics       = "data_analytics"
)

var builtinProfiles = map[string]func() *Profile{
	ProfileCybersecurity:       Cybersecurity,
	ProfileSoftwareEngineering: SoftwareEngineering,
	ProfileDataAnalytics:       DataAnalytics,
}

// ProfileNames lists the built-in profiles
func ProfileNames() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProfileByName returns a fresh copy of a built-in profile. Spaces and
// dashes in the name are treated as underscores.
func ProfileByName(name string) (*Profile, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if key == "" {
		key = ProfileCybersecurity
	}
	build, ok := builtinProfiles[key]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(ProfileNames(), ", "))
	}
	return build(), nil
}

// usStates is the geographic table shared by the US profiles
func usStates() map[models.GeoKey]float64 {
	return map[models.GeoKey]float64{
		"CA":      1.18,
		"NY":      1.15,
		"WA":      1.12,
		"MA":      1.10,
		"DC":      1.12,
		"VA":      1.07,
		"TX":      1.03,
		"FL":      1.00,
		"IL":      1.02,
		"CO":      1.05,
		"GA":      0.98,
		"NC":      0.98,
		"AZ":      0.97,
		"OH":      0.95,
		"PA":      0.97,
		"REMOTE":  1.00,
		"DEFAULT": 1.00,
	}
}

func standardLevelAliases() []Alias {
	return []Alias{
		{"junior", "entry"},
		{"entry", "entry"},
		{"entry-level", "entry"},
		{"mid", "mid"},
		{"mid-level", "mid"},
		{"intermediate", "mid"},
		{"senior", "senior"},
		{"lead", "senior"},
		{"staff", "senior"},
		{"principal", "senior"},
	}
}

func standardAnchors() map[models.LevelKey]float64 {
	return map[models.LevelKey]float64{
		models.LevelEntry:  1.0,
		models.LevelMid:    4.0,
		models.LevelSenior: 8.0,
	}
}

func levels(entry, mid, senior [2]float64) map[models.LevelKey]models.Range {
	return map[models.LevelKey]models.Range{
		models.LevelEntry:  {Low: entry[0], High: entry[1]},
		models.LevelMid:    {Low: mid[0], High: mid[1]},
		models.LevelSenior: {Low: senior[0], High: senior[1]},
	}
}

// Cybersecurity is the reference profile: 2024 US baselines projected to 2026
func Cybersecurity() *Profile {
	return &Profile{
		Name:        ProfileCybersecurity,
		DefaultRole: "cybersecurity_engineer",
		BaseYear:    2024,
		TargetYear:  2026,
		Baselines: map[models.RoleKey]map[models.LevelKey]models.Range{
			"cybersecurity_engineer":  levels([2]float64{90000, 120000}, [2]float64{120000, 160000}, [2]float64{160000, 210000}),
			"cloud_security_engineer": levels([2]float64{105000, 135000}, [2]float64{135000, 175000}, [2]float64{175000, 230000}),
			"devsecops_engineer":      levels([2]float64{100000, 130000}, [2]float64{130000, 170000}, [2]float64{170000, 225000}),
			"appsec_engineer":         levels([2]float64{100000, 135000}, [2]float64{135000, 180000}, [2]float64{180000, 240000}),
			"soc_analyst":             levels([2]float64{70000, 95000}, [2]float64{95000, 125000}, [2]float64{125000, 160000}),
			"incident_response_dfir":  levels([2]float64{95000, 125000}, [2]float64{125000, 165000}, [2]float64{165000, 220000}),
			"threat_hunter":           levels([2]float64{100000, 130000}, [2]float64{130000, 175000}, [2]float64{175000, 230000}),
			"penetration_tester":      levels([2]float64{85000, 115000}, [2]float64{115000, 155000}, [2]float64{155000, 210000}),
			"iam_engineer":            levels([2]float64{90000, 120000}, [2]float64{120000, 160000}, [2]float64{160000, 210000}),
			"security_architect":      levels([2]float64{135000, 175000}, [2]float64{175000, 220000}, [2]float64{220000, 280000}),
			"grc_analyst":             levels([2]float64{80000, 105000}, [2]float64{105000, 140000}, [2]float64{140000, 185000}),
		},
		RoleOrder: []models.RoleKey{
			"cybersecurity_engineer", "cloud_security_engineer", "devsecops_engineer", "appsec_engineer",
			"soc_analyst", "incident_response_dfir", "threat_hunter", "penetration_tester",
			"iam_engineer", "security_architect", "grc_analyst",
		},
		ONETCodes: map[models.RoleKey]string{
			"cybersecurity_engineer": "15-1299.05",
			"soc_analyst":            "15-1212.00",
			"penetration_tester":     "15-1299.04",
		},
		CAGR: map[models.RoleKey]float64{
			"cloud_security_engineer": 0.07,
			"devsecops_engineer":      0.07,
			"appsec_engineer":         0.06,
			"security_architect":      0.06,
		},
		DefaultCAGR: 0.05,
		GrowthYears: 2,
		Inflation:   1.07,
		SkillPremium: map[string]float64{
			// cloud & platform security
			"aws_security":   0.05,
			"azure_security": 0.05,
			"gcp_security":   0.05,
			"kubernetes":     0.04,
			"terraform":      0.03,
			"containers":     0.03,
			"cnapp":          0.04,
			"cspm":           0.03,

			// security engineering
			"zero_trust":    0.04,
			"iam":           0.03,
			"okta":          0.02,
			"entra_id":      0.02,
			"sso_saml_oidc": 0.02,
			"siem":          0.03,
			"soar":          0.03,
			"edr":           0.02,

			// DFIR / threat
			"dfir":                0.05,
			"incident_response":   0.04,
			"threat_hunting":      0.04,
			"malware_analysis":    0.04,
			"reverse_engineering": 0.04,

			// AppSec
			"secure_sdlc":     0.03,
			"sast_dast":       0.03,
			"threat_modeling": 0.03,

			// certs
			"oscp":          0.06,
			"gcih":          0.05,
			"gcfa":          0.05,
			"gpen":          0.05,
			"cissp":         0.05,
			"ccsp":          0.05,
			"security_plus": 0.02,
		},
		SkillAliases: map[string]string{
			"security+":         "security_plus",
			"comptia_security+": "security_plus",
			"zerotrust":         "zero_trust",
			"k8s":               "kubernetes",
			"entra":             "entra_id",
			"azure_ad":          "entra_id",
		},
		SkillsCap:     0.25,
		SkillsDamping: 0.85,
		Geo:           usStates(),
		RoleAliases: []Alias{
			{"security engineer", "cybersecurity_engineer"},
			{"cybersecurity engineer", "cybersecurity_engineer"},
			{"cyber security engineer", "cybersecurity_engineer"},
			{"cloud security engineer", "cloud_security_engineer"},
			{"devsecops engineer", "devsecops_engineer"},
			{"application security engineer", "appsec_engineer"},
			{"appsec engineer", "appsec_engineer"},
			{"soc analyst", "soc_analyst"},
			{"incident response", "incident_response_dfir"},
			{"dfir", "incident_response_dfir"},
			{"threat hunter", "threat_hunter"},
			{"penetration tester", "penetration_tester"},
			{"pen tester", "penetration_tester"},
			{"red team", "penetration_tester"},
			{"iam engineer", "iam_engineer"},
			{"security architect", "security_architect"},
			{"grc analyst", "grc_analyst"},
		},
		LevelAliases: standardLevelAliases(),
		Weights:      Weights{Skills: 0.20, Geo: 0.20, Regression: 0.20},
		LevelAnchors: standardAnchors(),
		Leverage:     0.008,
		HighLeverage: 0.010,
		HighLeverageRoles: []models.RoleKey{
			"security_architect", "cloud_security_engineer", "devsecops_engineer",
		},
		ClipLow:  -0.05,
		ClipHigh: 0.08,
	}
}

// SoftwareEngineering covers the O*NET software occupations. The seed ranges
// are the 2024 national percentiles (p10-p25, p25-p75, p75-p90); run with a
// live O*NET refresh to replace them.
func SoftwareEngineering() *Profile {
	return &Profile{
		Name:        ProfileSoftwareEngineering,
		DefaultRole: "software_developer",
		BaseYear:    2024,
		TargetYear:  2026,
		Baselines: map[models.RoleKey]map[models.LevelKey]models.Range{
			"software_developer":           levels([2]float64{79850, 103060}, [2]float64{103060, 167540}, [2]float64{167540, 211450}),
			"web_developer":                levels([2]float64{48040, 64130}, [2]float64{64130, 120560}, [2]float64{120560, 149290}),
			"information_security_analyst": levels([2]float64{69660, 95700}, [2]float64{95700, 157550}, [2]float64{157550, 186420}),
			"data_scientist":               levels([2]float64{61070, 82360}, [2]float64{82360, 148470}, [2]float64{148470, 194410}),
			"devops_engineer":              levels([2]float64{79850, 103060}, [2]float64{103060, 167540}, [2]float64{167540, 211450}),
			"cloud_engineer":               levels([2]float64{60630, 76030}, [2]float64{76030, 123470}, [2]float64{123470, 155340}),
		},
		RoleOrder: []models.RoleKey{
			"software_developer", "web_developer", "information_security_analyst",
			"data_scientist", "devops_engineer", "cloud_engineer",
		},
		ONETCodes: map[models.RoleKey]string{
			"software_developer":           "15-1252.00",
			"web_developer":                "15-1254.00",
			"information_security_analyst": "15-1212.00",
			"data_scientist":               "15-2051.00",
			"devops_engineer":              "15-1252.00", // proxy: software developers
			"cloud_engineer":               "15-1244.00", // proxy: network & computer systems admins
		},
		DefaultCAGR: 0,
		GrowthYears: 2,
		Inflation:   1.03,
		SkillPremium: map[string]float64{
			"aws":              0.04,
			"kubernetes":       0.05,
			"terraform":        0.03,
			"security":         0.03,
			"system_design":    0.04,
			"machine_learning": 0.06,
		},
		SkillAliases: map[string]string{
			"systemdesign":    "system_design",
			"machinelearning": "machine_learning",
			"ml":              "machine_learning",
			"k8s":             "kubernetes",
		},
		SkillsCap:     0.25,
		SkillsDamping: 0.85,
		Geo:           usStates(),
		// 1 + demand + geographic factor per role, expressed as one multiplier
		Demand: map[models.RoleKey]float64{
			"software_developer":           1.15,
			"web_developer":                1.13,
			"information_security_analyst": 1.19,
			"data_scientist":               1.18,
			"devops_engineer":              1.18,
			"cloud_engineer":               1.16,
		},
		RoleAliases: []Alias{
			{"software developer", "software_developer"},
			{"software engineer", "software_developer"},
			{"web developer", "web_developer"},
			{"frontend developer", "web_developer"},
			{"front end developer", "web_developer"},
			{"information security analyst", "information_security_analyst"},
			{"security analyst", "information_security_analyst"},
			{"data scientist", "data_scientist"},
			{"machine learning engineer", "data_scientist"},
			{"ml engineer", "data_scientist"},
			{"devops engineer", "devops_engineer"},
			{"site reliability engineer", "devops_engineer"},
			{"cloud engineer", "cloud_engineer"},
		},
		LevelAliases:      standardLevelAliases(),
		Weights:           Weights{Skills: 0.20, Geo: 0.20, Regression: 0.20},
		LevelAnchors:      standardAnchors(),
		Leverage:          0.008,
		HighLeverage:      0.010,
		HighLeverageRoles: []models.RoleKey{"devops_engineer", "cloud_engineer"},
		ClipLow:           -0.05,
		ClipHigh:          0.08,
	}
}

const (
	entryStep  = 0.78
	seniorStep = 1.30
)

// ladder fills in all three levels from the single level a survey row reports
func ladder(at models.LevelKey, low, high float64) map[models.LevelKey]models.Range {
	given := models.Range{Low: low, High: high}
	mid := given
	switch at {
	case models.LevelSenior:
		mid = given.Scale(1 / seniorStep)
	case models.LevelEntry:
		mid = given.Scale(1 / entryStep)
	}
	out := map[models.LevelKey]models.Range{
		models.LevelEntry:  roundRange(mid.Scale(entryStep)),
		models.LevelMid:    roundRange(mid),
		models.LevelSenior: roundRange(mid.Scale(seniorStep)),
	}
	out[at] = given
	return out
}

func roundRange(r models.Range) models.Range {
	return models.Range{Low: math.Round(r.Low/500) * 500, High: math.Round(r.High/500) * 500}
}

// DataAnalytics projects 2025 analytics baselines one year forward.
// Locations are regions rather than states; CA is Canada here.
func DataAnalytics() *Profile {
	return &Profile{
		Name:        ProfileDataAnalytics,
		DefaultRole: "data_analyst",
		BaseYear:    2025,
		TargetYear:  2026,
		Baselines: map[models.RoleKey]map[models.LevelKey]models.Range{
			"data_analyst":              ladder(models.LevelMid, 65000, 95000),
			"bi_analyst":                ladder(models.LevelMid, 70000, 105000),
			"business_analyst":          ladder(models.LevelMid, 70000, 110000),
			"product_analyst":           ladder(models.LevelMid, 80000, 125000),
			"analytics_engineer":        ladder(models.LevelSenior, 110000, 165000),
			"data_engineer":             ladder(models.LevelSenior, 115000, 175000),
			"data_scientist":            ladder(models.LevelSenior, 120000, 180000),
			"machine_learning_engineer": ladder(models.LevelSenior, 140000, 210000),
			"bi_developer":              ladder(models.LevelSenior, 90000, 140000),
			"marketing_analyst":         ladder(models.LevelMid, 65000, 100000),
			"ai_analyst":                ladder(models.LevelMid, 85000, 135000),
			"analytics_manager":         ladder(models.LevelSenior, 130000, 200000),
		},
		RoleOrder: []models.RoleKey{
			"data_analyst", "bi_analyst", "business_analyst", "product_analyst",
			"analytics_engineer", "data_engineer", "data_scientist", "machine_learning_engineer",
			"bi_developer", "marketing_analyst", "ai_analyst", "analytics_manager",
		},
		ONETCodes: map[models.RoleKey]string{
			"data_analyst":   "15-2031.00", // proxy: operations research analysts
			"bi_analyst":     "15-2051.01",
			"data_scientist": "15-2051.00",
			"data_engineer":  "15-1252.00", // proxy: software developers
		},
		// growth follows the seniority of the surveyed level
		CAGR: map[models.RoleKey]float64{
			"analytics_engineer":        0.08,
			"data_engineer":             0.08,
			"data_scientist":            0.08,
			"machine_learning_engineer": 0.08,
			"bi_developer":              0.08,
			"analytics_manager":         0.085,
		},
		DefaultCAGR: 0.07,
		GrowthYears: 1,
		Inflation:   1.03,
		SkillPremium: map[string]float64{
			"python":           0.03,
			"sql":              0.02,
			"tableau":          0.02,
			"power_bi":         0.02,
			"looker":           0.02,
			"dbt":              0.03,
			"snowflake":        0.03,
			"bigquery":         0.03,
			"spark":            0.03,
			"machine_learning": 0.04,
			"experimentation":  0.03,
			"dax":              0.02,
			"excel":            0.01,
			"leadership":       0.015,
		},
		SkillAliases: map[string]string{
			"powerbi":     "power_bi",
			"ml":          "machine_learning",
			"a_b_testing": "experimentation",
		},
		SkillsCap:     0.25,
		SkillsDamping: 0.85,
		Geo: map[models.GeoKey]float64{
			"US":      1.00,
			"EU":      0.85,
			"UK":      0.90,
			"CA":      0.90,
			"MEA":     0.65,
			"APAC":    0.80,
			"REMOTE":  0.95,
			"DEFAULT": 0.90,
		},
		Demand: map[models.RoleKey]float64{
			"data_analyst":              1.10,
			"bi_analyst":                1.08,
			"business_analyst":          1.06,
			"product_analyst":           1.12,
			"analytics_engineer":        1.18,
			"data_engineer":             1.17,
			"data_scientist":            1.15,
			"machine_learning_engineer": 1.20,
			"bi_developer":              1.10,
			"marketing_analyst":         1.07,
			"ai_analyst":                1.13,
			"analytics_manager":         1.12,
		},
		RoleAliases: []Alias{
			{"data analyst", "data_analyst"},
			{"business intelligence analyst", "bi_analyst"},
			{"bi analyst", "bi_analyst"},
			{"business analyst", "business_analyst"},
			{"product analyst", "product_analyst"},
			{"analytics engineer", "analytics_engineer"},
			{"data engineer", "data_engineer"},
			{"data scientist", "data_scientist"},
			{"machine learning engineer", "machine_learning_engineer"},
			{"ml engineer", "machine_learning_engineer"},
			{"power bi developer", "bi_developer"},
			{"bi developer", "bi_developer"},
			{"marketing analyst", "marketing_analyst"},
			{"ai analyst", "ai_analyst"},
			{"analytics manager", "analytics_manager"},
		},
		LevelAliases: append(standardLevelAliases(),
			Alias{"manager", "senior"},
			Alias{"director", "senior"},
		),
		Weights:      Weights{Skills: 0.20, Geo: 0.20, Regression: 0.20},
		LevelAnchors: standardAnchors(),
		Leverage:     0.008,
		HighLeverage: 0.010,
		HighLeverageRoles: []models.RoleKey{
			"machine_learning_engineer", "data_engineer", "analytics_manager",
		},
		ClipLow:  -0.05,
		ClipHigh: 0.08,
	}
}
