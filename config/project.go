package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/gameday/rekognition-edge/infra/lib/waf"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ProjectFile is the optional project configuration file. Keys mirror the
// CDK context keys; anything left out keeps the context value.
type ProjectFile struct {
	ProjectName string         `toml:"projectName" yaml:"projectName" validate:"omitempty,lowercase,hostname_rfc1123,max=40"`
	StageName   string         `toml:"stageName" yaml:"stageName" validate:"omitempty,alphanum,max=64"`
	Waf         WafFileSection `toml:"waf" yaml:"waf"`
	Site        SiteSettings   `toml:"site" yaml:"site"`
	Lambda      LambdaSettings `toml:"lambda" yaml:"lambda"`
}

type WafFileSection struct {
	RateLimit        *int     `toml:"rateLimit" yaml:"rateLimit" validate:"omitempty,min=10,max=2000000000"`
	GeoCountries     []string `toml:"geoCountries" yaml:"geoCountries" validate:"omitempty,dive,iso3166_1_alpha2"`
	AllowAddresses   []string `toml:"allowAddresses" yaml:"allowAddresses" validate:"omitempty,dive,cidr|ip"`
	IPRulePriority   string   `toml:"ipRulePriority" yaml:"ipRulePriority"`
	RateRulePriority string   `toml:"rateRulePriority" yaml:"rateRulePriority"`
	GeoRulePriority  string   `toml:"geoRulePriority" yaml:"geoRulePriority"`
}

// SiteSettings feed the rendered static site pages.
type SiteSettings struct {
	Title   string `toml:"title" yaml:"title"`
	Message string `toml:"message" yaml:"message"`
}

// LambdaSettings are passed to the Rekognition function as environment.
type LambdaSettings struct {
	SampleBucket    string  `toml:"sampleBucket" yaml:"sampleBucket"`
	SampleKeyPrefix string  `toml:"sampleKeyPrefix" yaml:"sampleKeyPrefix"`
	MaxLabels       int     `toml:"maxLabels" yaml:"maxLabels" validate:"omitempty,min=1,max=1000"`
	MinConfidence   float64 `toml:"minConfidence" yaml:"minConfidence" validate:"omitempty,min=0,max=100"`
}

// WafSettings are the optional protections added to the default catalog.
type WafSettings struct {
	RateLimit        *int
	GeoCountries     []string
	AllowAddresses   []string
	IPRulePriority   waf.PriorityPolicy
	RateRulePriority waf.PriorityPolicy
	GeoRulePriority  waf.PriorityPolicy
}

// AssembleInput turns the settings into rule assembler input for one
// protected resource type, e.g. "cloudfront" or "apigateway".
func (s WafSettings) AssembleInput(projectName, resourceType string) waf.AssembleInput {
	return waf.AssembleInput{
		NamePrefix:       projectName + "-" + strings.ToLower(resourceType),
		Scope:            waf.ScopeForResourceType(resourceType),
		Addresses:        s.AllowAddresses,
		RateLimit:        s.RateLimit,
		GeoCountries:     s.GeoCountries,
		IPRulePriority:   s.IPRulePriority,
		RateRulePriority: s.RateRulePriority,
		GeoRulePriority:  s.GeoRulePriority,
	}
}

// WebACL assembles the default catalog with these settings and builds the
// web ACL for resourceType, named <project>-<type>-waf-web-acl.
func (s WafSettings) WebACL(projectName, resourceType string) (waf.WebACL, error) {
	in := s.AssembleInput(projectName, resourceType)
	rs, err := waf.Assemble(waf.DefaultCatalog(), in)
	if err != nil {
		return waf.WebACL{}, fmt.Errorf("assemble %s rules: %w", resourceType, err)
	}
	kind := strings.ToLower(resourceType)
	return waf.Build(rs, in.Scope,
		fmt.Sprintf("%s-%s-waf-web-acl", projectName, kind),
		fmt.Sprintf("%s%s-WafWebAcl", strings.ToLower(projectName), kind),
	)
}

// Project is the resolved configuration shared by all stacks.
type Project struct {
	Name      string
	StageName string
	Waf       WafSettings
	Site      SiteSettings
	Lambda    LambdaSettings
}

var validate = validator.New()

// LoadProjectFile reads a .toml, .yaml or .yml project file. A missing file
// is not an error: it returns nil.
func LoadProjectFile(path string) (*ProjectFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading project config file %s: %w", path, err)
	}

	var file ProjectFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(content, &file)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &file)
	default:
		return nil, fmt.Errorf("unsupported project config extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding project config from %s: %w", path, err)
	}

	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("invalid project config %s: %w", path, err)
	}
	return &file, nil
}

// WithFile overlays the non-empty values of f.
func (p Project) WithFile(f *ProjectFile) (Project, error) {
	if f == nil {
		return p, nil
	}
	if f.ProjectName != "" {
		p.Name = f.ProjectName
	}
	if f.StageName != "" {
		p.StageName = f.StageName
	}
	if f.Waf.RateLimit != nil {
		p.Waf.RateLimit = f.Waf.RateLimit
	}
	if len(f.Waf.GeoCountries) > 0 {
		p.Waf.GeoCountries = f.Waf.GeoCountries
	}
	if len(f.Waf.AllowAddresses) > 0 {
		p.Waf.AllowAddresses = f.Waf.AllowAddresses
	}
	for _, pp := range []struct {
		raw string
		dst *waf.PriorityPolicy
	}{
		{f.Waf.IPRulePriority, &p.Waf.IPRulePriority},
		{f.Waf.RateRulePriority, &p.Waf.RateRulePriority},
		{f.Waf.GeoRulePriority, &p.Waf.GeoRulePriority},
	} {
		policy, err := waf.ParsePriorityPolicy(pp.raw)
		if err != nil {
			return p, err
		}
		if !policy.IsZero() {
			*pp.dst = policy
		}
	}
	if f.Site.Title != "" {
		p.Site.Title = f.Site.Title
	}
	if f.Site.Message != "" {
		p.Site.Message = f.Site.Message
	}
	if f.Lambda.SampleBucket != "" {
		p.Lambda.SampleBucket = f.Lambda.SampleBucket
	}
	if f.Lambda.SampleKeyPrefix != "" {
		p.Lambda.SampleKeyPrefix = f.Lambda.SampleKeyPrefix
	}
	if f.Lambda.MaxLabels != 0 {
		p.Lambda.MaxLabels = f.Lambda.MaxLabels
	}
	if f.Lambda.MinConfidence != 0 {
		p.Lambda.MinConfidence = f.Lambda.MinConfidence
	}
	return p, nil
}

// WithEnv overlays the WAF values set in the environment.
func (p Project) WithEnv(e WafEnvironmentVariables) Project {
	if e.RateLimit != nil {
		p.Waf.RateLimit = e.RateLimit
	}
	if len(e.GeoCountries) > 0 {
		p.Waf.GeoCountries = e.GeoCountries
	}
	if len(e.AllowAddresses) > 0 {
		p.Waf.AllowAddresses = e.AllowAddresses
	}
	if !e.IPRulePriority.IsZero() {
		p.Waf.IPRulePriority = e.IPRulePriority
	}
	if !e.RateRulePriority.IsZero() {
		p.Waf.RateRulePriority = e.RateRulePriority
	}
	if !e.GeoRulePriority.IsZero() {
		p.Waf.GeoRulePriority = e.GeoRulePriority
	}
	return p
}

// LoadProject resolves the project configuration for the stack holding
// scope: context first, then the config file, then environment variables.
func LoadProject(scope constructs.Construct) Project {
	p := Project{
		Name:      ProjectName(scope),
		StageName: StageName(scope),
		Site: SiteSettings{
			Title:   "Rekognition demo",
			Message: "Static content served from S3 through CloudFront.",
		},
		Lambda: LambdaSettings{
			SampleBucket:    "rekognition-console-v4-prod-nrt",
			SampleKeyPrefix: "assets/StaticImageAssets/SampleImages/",
			MaxLabels:       10,
			MinConfidence:   80,
		},
	}

	if path := ConfigFile(scope); path != "" {
		file, err := LoadProjectFile(path)
		if err != nil {
			panic(err)
		}
		if p, err = p.WithFile(file); err != nil {
			panic(fmt.Sprintf("project config %s: %v", path, err))
		}
	}

	return p.WithEnv(GetEnvironmentVariables[WafEnvironmentVariables](scope))
}
