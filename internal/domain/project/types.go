package project

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/GriffinCanCode/TestBench/backend/internal/shared/id"
	"github.com/GriffinCanCode/TestBench/backend/internal/utils"
)

var (
	ErrNotFound = errors.New("project not found")
	ErrClosed   = errors.New("project store is closed")
)

// Language of the project's code
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
)

// Project is a named pair of source and test code
type Project struct {
	ID        string   `json:"id" db:"id"`
	Name      string   `json:"name" db:"name"`
	Code      string   `json:"code" db:"code"`
	TestCode  string   `json:"testCode" db:"test_code"`
	Language  Language `json:"language" db:"language"`
	CreatedAt int64    `json:"createdAt" db:"created_at"` // Unix millis
	UpdatedAt int64    `json:"updatedAt" db:"updated_at"` // Unix millis
}

// Input holds the fields of a new project
type Input struct {
	Name     string   `json:"name" yaml:"name" toml:"name"`
	Code     string   `json:"code" yaml:"code" toml:"code"`
	TestCode string   `json:"testCode" yaml:"testCode" toml:"testCode"`
	Language Language `json:"language" yaml:"language" toml:"language"`
}

// Patch holds optional field updates; nil fields are left unchanged
type Patch struct {
	Name     *string   `json:"name"`
	Code     *string   `json:"code"`
	TestCode *string   `json:"testCode"`
	Language *Language `json:"language"`
}

// Store persists projects
type Store interface {
	Create(ctx context.Context, in Input) (*Project, error)
	Get(ctx context.Context, id string) (*Project, error)
	GetByName(ctx context.Context, name string) (*Project, error)
	List(ctx context.Context) ([]Project, error)
	Update(ctx context.Context, id string, patch Patch) (*Project, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// Normalize trims the name and defaults the language
func (in *Input) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	if in.Language == "" {
		in.Language = LanguageJavaScript
	}
}

// Validate checks field limits
func (in Input) Validate() error {
	if err := utils.ValidateName(in.Name); err != nil {
		return err
	}
	if err := utils.ValidateCode("code", in.Code); err != nil {
		return err
	}
	if err := utils.ValidateCode("testCode", in.TestCode); err != nil {
		return err
	}
	return validateLanguage(in.Language)
}

// Apply returns the project with the patch applied and validated
func (p Project) Apply(patch Patch) (Project, error) {
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Code != nil {
		p.Code = *patch.Code
	}
	if patch.TestCode != nil {
		p.TestCode = *patch.TestCode
	}
	if patch.Language != nil {
		p.Language = *patch.Language
	}

	in := Input{Name: p.Name, Code: p.Code, TestCode: p.TestCode, Language: p.Language}
	if err := in.Validate(); err != nil {
		return Project{}, err
	}
	p.UpdatedAt = now()
	return p, nil
}

func validateLanguage(lang Language) error {
	return utils.ValidateOneOf("language", string(lang), string(LanguageJavaScript), string(LanguageTypeScript))
}

// now returns the store clock in Unix millis
func now() int64 {
	return time.Now().UnixMilli()
}

// newProject validates in and stamps a fresh ID and timestamps
func newProject(in Input) (*Project, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ts := now()
	return &Project{
		ID:        id.NewProjectID().String(),
		Name:      in.Name,
		Code:      in.Code,
		TestCode:  in.TestCode,
		Language:  in.Language,
		CreatedAt: ts,
		UpdatedAt: ts,
	}, nil
}
