package app

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"curriculum/api/internal/curriculum"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	_ = validate.RegisterValidation("abcmethod", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || curriculum.ABCMethod(value).Valid()
	})
	_ = validate.RegisterValidation("medialevel", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || curriculum.MediaLevel(value).Valid()
	})
	_ = validate.RegisterValidation("jsonobject", func(fl validator.FieldLevel) bool {
		raw, ok := fl.Field().Interface().(json.RawMessage)
		if !ok || len(raw) == 0 {
			return true
		}
		var obj map[string]any
		return json.Unmarshal(raw, &obj) == nil
	})
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

type CreateProjectInput struct {
	Title             string              `json:"title" validate:"required,max=200"`
	Strategy          curriculum.Strategy `json:"strategy"`
	SyllabusBlueprint json.RawMessage     `json:"syllabusBlueprint" validate:"jsonobject"`
}

// SaveProjectInput updates the header fields that are present and persists
// the current tree. A non-nil Structure replaces the tree first.
type SaveProjectInput struct {
	Title             *string              `json:"title" validate:"omitempty,max=200"`
	Strategy          *curriculum.Strategy `json:"strategy"`
	Structure         curriculum.Tree      `json:"structure"`
	SyllabusBlueprint json.RawMessage      `json:"syllabusBlueprint" validate:"jsonobject"`
	Message           string               `json:"message" validate:"max=200"`
	Author            string               `json:"author" validate:"max=100"`
}

type AddChildInput struct {
	ParentPath curriculum.Path `json:"parentPath" validate:"max=4,dive,required"`
	Kind       curriculum.Kind `json:"kind" validate:"required"`
}

type RenameNodeInput struct {
	Path  curriculum.Path `json:"path" validate:"min=1,max=5,dive,required"`
	Title string          `json:"title" validate:"max=300"`
}

type DeleteNodeInput struct {
	Path curriculum.Path `json:"path" validate:"min=1,max=5,dive,required"`
}

type ReorderInput struct {
	ActiveID   string          `json:"activeId" validate:"required"`
	OverID     string          `json:"overId" validate:"required"`
	Kind       curriculum.Kind `json:"kind" validate:"required"`
	ParentPath curriculum.Path `json:"parentPath" validate:"max=4,dive,required"`
}

// ScenePatchInput mirrors curriculum.ScenePatch with request-level checks.
type ScenePatchInput struct {
	Title              *string `json:"title" validate:"omitempty,max=300"`
	DurationMinutes    *int    `json:"durationMinutes" validate:"omitempty,min=0,max=1440"`
	LearningObjective  *string `json:"learningObjective" validate:"omitempty,max=2000"`
	ABCMethod          *string `json:"abcMethod" validate:"omitempty,abcmethod"`
	MediaLevel         *string `json:"mediaLevel" validate:"omitempty,medialevel"`
	MediaFormat        *string `json:"mediaFormat" validate:"omitempty,max=200"`
	InteractionMoment  *string `json:"interactionMoment"`
	SelectedActivityID *string `json:"selectedActivityId"`
}

func (in ScenePatchInput) patch() curriculum.ScenePatch {
	p := curriculum.ScenePatch{
		Title:              in.Title,
		DurationMinutes:    in.DurationMinutes,
		LearningObjective:  in.LearningObjective,
		MediaFormat:        in.MediaFormat,
		InteractionMoment:  in.InteractionMoment,
		SelectedActivityID: in.SelectedActivityID,
	}
	if in.ABCMethod != nil {
		method := curriculum.ABCMethod(*in.ABCMethod)
		p.ABCMethod = &method
	}
	if in.MediaLevel != nil {
		level := curriculum.MediaLevel(*in.MediaLevel)
		p.MediaLevel = &level
	}
	return p
}
