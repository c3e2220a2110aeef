package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/pterm/pterm"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/client"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/config"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/extract"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/forecast"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/models"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/report"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/scraper"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/ui"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/utils"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/web"
)

// demoQueries are the three worked examples shown by -examples
var demoQueries = []models.Query{
	{
		Role: "Cybersecurity Engineer", Level: "Mid", YearsExperience: 4, Location: "TX",
		Skills:      []string{"siem", "soar", "zero_trust", "cissp"},
		Description: "We need a mid-level security engineer with SIEM/SOAR, Zero Trust, and CISSP preferred.",
	},
	{
		Role: "Cloud Security Engineer", Level: "Senior", YearsExperience: 9, Location: "CA",
		Skills:      []string{"aws_security", "kubernetes", "terraform", "cnapp", "ccsp"},
		Description: "Senior Cloud Security Engineer - AWS, Kubernetes, Terraform, CNAPP, CCSP.",
	},
	{
		Role: "SOC Analyst", Level: "Entry", YearsExperience: 1, Location: "REMOTE",
		Skills:      []string{"siem", "edr", "security_plus"},
		Description: "Entry SOC analyst with EDR and SIEM experience. Security+ is a plus.",
	},
}

// printUsageExamples displays usage examples for the program
func printUsageExamples() {
	fmt.Println("\nSalary Forecast Usage Examples")
	fmt.Println("\n1. Forecast a mid-level cybersecurity engineer in Texas:")
	fmt.Println("   salaryforecast -role \"Cybersecurity Engineer\" -level mid -years 4 -location TX -skills siem,soar,cissp")
	fmt.Println("\n2. Let a job posting decide role, level and skills:")
	fmt.Println("   salaryforecast -posting-url https://boards.example.com/jobs/123 -years 6 -location CA")
	fmt.Println("\n3. Write the full software engineering grid with SVG charts, refreshed from O*NET:")
	fmt.Println("   salaryforecast -profile software_engineering -report -onet -chart svg -out-dir reports")
	fmt.Println("\n4. Serve the forecasting API on port 9000:")
	fmt.Println("   salaryforecast -serve -port 9000")
	fmt.Println("\n5. Run the built-in worked examples:")
	fmt.Println("   salaryforecast -examples")
}

func main() {
	// Query flags
	role := flag.String("role", "", "Job role, e.g. \"Cloud Security Engineer\"")
	level := flag.String("level", "", "Seniority level (entry, mid, senior or an alias like junior/staff)")
	years := flag.Float64("years", 0, "Years of experience")
	location := flag.String("location", "", "State code, REMOTE, or a region for the data analytics profile")
	skills := flag.String("skills", "", "Comma separated skills and certifications")
	description := flag.String("description", "", "Job posting text used to infer role, level and skills")
	postingURL := flag.String("posting-url", "", "Job posting URL used to infer role, level and skills")
	strict := flag.Bool("strict", false, "Fail on unknown role, level, location or skills instead of falling back")

	// Mode flags
	examples := flag.Bool("examples", false, "Run the built-in worked examples")
	usage := flag.Bool("usage", false, "Show usage examples")
	reportMode := flag.Bool("report", false, "Forecast every role at every level and write a report")
	serve := flag.Bool("serve", false, "Serve the HTTP API")

	// Settings (override the config file)
	configPath := flag.String("config", "", "Path to the YAML config file")
	profileName := flag.String("profile", "", "Profile: "+strings.Join(forecast.ProfileNames(), ", "))
	outDir := flag.String("out-dir", "", "Report output directory")
	format := flag.String("format", "", "Report format (csv or json)")
	chartFormat := flag.String("chart", "", "Report chart format (png, svg or none)")
	onet := flag.Bool("onet", false, "Refresh baselines from O*NET national wages before forecasting")
	proxyURL := flag.String("proxy", "", "Proxy URL to use for O*NET and posting requests")
	insecure := flag.Bool("insecure", false, "Skip TLS certificate verification (e.g. behind an intercepting proxy)")
	port := flag.String("port", "", "Port for -serve")
	debug := flag.Bool("debug", false, "Enable debug mode")

	// Banner control flags (two aliases for the same functionality)
	silence := flag.Bool("silence", false, "Silence the banner")
	noBanner := flag.Bool("nobanner", false, "Silence the banner (alias for -silence)")

	flag.Parse()

	ui.PrintBanner(*silence || *noBanner)

	if *usage {
		printUsageExamples()
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	applyFlags(cfg, flagOverrides{
		profile: *profileName, outDir: *outDir, format: *format, chart: *chartFormat,
		proxy: *proxyURL, port: *port, strict: *strict, onet: *onet, insecure: *insecure,
	})

	if *debug {
		pterm.EnableDebugMessages()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient, err := client.NewHTTPClient(client.Options{
		ProxyURL:           cfg.Fetch.ProxyURL,
		Timeout:            time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		InsecureSkipVerify: cfg.Fetch.InsecureSkipVerify,
	})
	if err != nil {
		log.Fatalf("Error creating HTTP client: %v", err)
	}

	profile, err := cfg.BuildProfile()
	if err != nil {
		log.Fatalf("Error building profile: %v", err)
	}
	if cfg.Fetch.ONET {
		profile = refreshFromONET(ctx, httpClient, profile, *debug)
	}

	engine, err := forecast.New(profile)
	if err != nil {
		log.Fatalf("Error creating forecast engine: %v", err)
	}
	pterm.Debug.Printfln("Profile %s: %d roles, %d -> %d", profile.Name, len(profile.Roles()), profile.BaseYear, profile.TargetYear)

	switch {
	case *serve:
		srv := web.New(engine, web.Options{
			Username:       cfg.Server.Username,
			Password:       cfg.Server.Password,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Workers:        cfg.Report.Workers,
		})
		if err := srv.ListenAndServe(ctx, ":"+cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}

	case *reportMode:
		runReport(ctx, engine, cfg)

	case *examples:
		for i, q := range demoQueries {
			pterm.DefaultSection.Printfln("Example %d: %s (%s), %s, %v yrs", i+1, q.Role, q.Level, q.Location, q.YearsExperience)
			predictOne(engine, extract.Enrich(profile, q), cfg.Strict)
		}

	default:
		q := models.Query{
			Role:            *role,
			Level:           *level,
			YearsExperience: *years,
			Location:        *location,
			Skills:          utils.SplitList(*skills),
			Description:     *description,
		}
		if q.Role == "" && q.Description == "" && *postingURL == "" {
			flag.Usage()
			log.Fatal("One of -role, -description or -posting-url is required (or use -examples, -report, -serve)")
		}

		q = extract.Enrich(profile, q)
		if *postingURL != "" {
			body, err := scraper.FetchPosting(ctx, httpClient, *postingURL, *debug)
			if err != nil {
				log.Fatalf("Error fetching posting: %v", err)
			}
			ext, err := extract.FromHTML(profile, bytes.NewReader(body))
			if err != nil {
				log.Fatalf("Error reading posting: %v", err)
			}
			pterm.Info.Printfln("Posting suggests role=%q level=%q skills=%s", ext.Role, ext.Level, strings.Join(ext.Skills, ","))
			q = extract.Apply(profile, q, ext)
		}
		predictOne(engine, q, cfg.Strict)
	}
}

type flagOverrides struct {
	profile, outDir, format, chart, proxy, port string
	strict, onet, insecure                      bool
}

// applyFlags lets explicitly set flags win over the config file and environment
func applyFlags(cfg *config.Config, f flagOverrides) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Profile, f.profile)
	set(&cfg.Report.OutDir, f.outDir)
	set(&cfg.Report.Format, f.format)
	set(&cfg.Report.Chart, f.chart)
	set(&cfg.Fetch.ProxyURL, f.proxy)
	set(&cfg.Server.Port, f.port)
	cfg.Strict = cfg.Strict || f.strict
	cfg.Fetch.ONET = cfg.Fetch.ONET || f.onet
	cfg.Fetch.InsecureSkipVerify = cfg.Fetch.InsecureSkipVerify || f.insecure
}

func refreshFromONET(ctx context.Context, httpClient *http.Client, p *forecast.Profile, debug bool) *forecast.Profile {
	if len(p.ONETCodes) == 0 {
		pterm.Warning.Printfln("Profile %s has no O*NET codes; keeping built-in baselines", p.Name)
		return p
	}

	pterm.Info.Printfln("Fetching national wages from O*NET for %d roles...", len(p.ONETCodes))
	bar := pb.StartNew(uniqueCodes(p.ONETCodes))
	wages, errs := scraper.FetchAll(ctx, httpClient, p.ONETCodes, debug, bar)
	bar.Finish()

	for _, err := range errs {
		pterm.Warning.Printfln("%v", err)
	}
	for role, w := range wages {
		pterm.Debug.Printfln("%s %s: p10-p90 %s, median %s (%s)", role, w.Code,
			utils.FormatRange(w.P10, w.P90), utils.FormatUSD(w.P50), ui.FormatURL(w.SourceURL, "O*NET", true))
	}
	if len(wages) == 0 {
		pterm.Warning.Println("No wages fetched; keeping built-in baselines")
		return p
	}

	refreshed := p.WithBaselines(scraper.Baselines(wages))
	if err := refreshed.Validate(); err != nil {
		pterm.Warning.Printfln("Fetched wages rejected (%v); keeping built-in baselines", err)
		return p
	}
	pterm.Success.Printfln("Refreshed baselines for %d roles", len(wages))
	return refreshed
}

func uniqueCodes(codes map[models.RoleKey]string) int {
	seen := make(map[string]struct{})
	for _, c := range codes {
		seen[c] = struct{}{}
	}
	return len(seen)
}

func runReport(ctx context.Context, engine *forecast.Engine, cfg *config.Config) {
	profile := engine.Profile()
	queries := report.Rows(profile)

	pterm.Info.Printfln("Forecasting %d role/level combinations for %d...", len(queries), profile.TargetYear)
	bar := pb.StartNew(len(queries))
	entries, err := report.Run(ctx, engine, queries, report.RunOptions{
		Workers: cfg.Report.Workers,
		Strict:  cfg.Strict,
		Bar:     bar,
	})
	bar.Finish()
	if err != nil {
		log.Fatalf("Report cancelled: %v", err)
	}

	if err := report.RenderTable(entries); err != nil {
		log.Fatalf("Error rendering table: %v", err)
	}
	for _, failure := range report.Failures(entries) {
		pterm.Warning.Println(failure)
	}

	paths, err := report.Save(report.NewManifest(profile, entries, time.Now()), report.SaveOptions{
		Dir:    cfg.Report.OutDir,
		Format: cfg.Report.Format,
		Chart:  cfg.Report.Chart,
	})
	for _, path := range paths {
		pterm.Success.Printfln("Wrote %s", path)
	}
	if err != nil {
		log.Fatalf("Error writing report: %v", err)
	}
}

func predictOne(engine *forecast.Engine, q models.Query, strict bool) {
	var res models.PredictionResult
	if strict {
		var err error
		res, err = engine.PredictStrict(q)
		if err != nil {
			log.Fatalf("Invalid query:\n%v", err)
		}
	} else {
		res = engine.Predict(q)
	}

	p := engine.Profile()
	pterm.Info.Printfln("Resolved %s (%s), %s, %v yrs", res.Role, res.Level, res.Location, q.YearsExperience)
	if len(res.Skills) > 0 {
		pterm.Info.Printfln("Skills: %s", strings.Join(res.Skills, ", "))
	}
	fmt.Printf("Predicted %d range: %s\n", p.TargetYear, ui.ColorizeRange(res.FinalLow, res.FinalMid, res.FinalHigh))

	b := res.Breakdown
	data := pterm.TableData{
		{"Stage", "Low", "High", "Multiplier"},
		{fmt.Sprintf("Baseline %d", p.BaseYear), utils.FormatUSD(b.Baseline.Low), utils.FormatUSD(b.Baseline.High), ""},
		{"Growth", utils.FormatUSD(b.Growth.Low), utils.FormatUSD(b.Growth.High), utils.FormatMultiplier(p.GrowthFactor(res.Role))},
		{"Inflation", utils.FormatUSD(b.Inflation.Low), utils.FormatUSD(b.Inflation.High), utils.FormatMultiplier(p.Inflation)},
		{"A: base", utils.FormatUSD(b.CandidateA.Low), utils.FormatUSD(b.CandidateA.High), ""},
		{"B: skills", utils.FormatUSD(b.CandidateB.Low), utils.FormatUSD(b.CandidateB.High), utils.FormatMultiplier(res.SkillsMultiplier)},
		{"D: geo x demand", utils.FormatUSD(b.CandidateD.Low), utils.FormatUSD(b.CandidateD.High), utils.FormatMultiplier(res.GeoMultiplier * res.DemandMultiplier)},
		{"E: regression", utils.FormatUSD(b.CandidateE.Low), utils.FormatUSD(b.CandidateE.High), utils.FormatMultiplier(res.RegressionMultiplier)},
		{"Final", utils.FormatUSD(res.FinalLow), utils.FormatUSD(res.FinalHigh), ""},
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		log.Printf("Error rendering breakdown: %v", err)
	}
}
