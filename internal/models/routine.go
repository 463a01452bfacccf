// ABOUTME: Weekly routine record, the unit persisted to and retrieved from the vector store
// ABOUTME: JSON tags follow the Spanish schema the language model and seed files use
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Primary block type tags
const (
	BlockFuerza = "FUERZA"
	BlockOly    = "OLY"
)

// WOD formats
const (
	FormatAMRAP    = "AMRAP"
	FormatForTime  = "For Time"
	FormatEMOM     = "EMOM"
	FormatRounds   = "Rounds"
	FormatEscalera = "Escalera"
)

// WODFormats lists every accepted WOD format tag
var WODFormats = []string{FormatAMRAP, FormatForTime, FormatEMOM, FormatRounds, FormatEscalera}

// Intensities lists every accepted estimated intensity value
var Intensities = []string{"baja", "media", "media-alta", "alta"}

// WeekRoutine is one week of programming, identified by WeekID (semana_YYYY_WNN)
type WeekRoutine struct {
	WeekID    string `json:"semana_id" validate:"required,weekid"`
	StartDate string `json:"fecha_inicio" validate:"required,datetime=2006-01-02"`
	Days      []Day  `json:"dias" validate:"required,min=1,dive"`
}

// Day is a single training day
type Day struct {
	Name        string        `json:"dia" validate:"required"`
	Date        string        `json:"fecha" validate:"required"`
	PrimaryType string        `json:"tipo_bloque_principal,omitempty" validate:"omitempty,oneof=FUERZA OLY"`
	Core        *Block        `json:"core,omitempty"`
	Primary     *PrimaryBlock `json:"bloque_principal,omitempty"`
	WOD         WOD           `json:"wod"`
	Accessories *Block        `json:"accesorios,omitempty"`
	Metadata    DayMetadata   `json:"metadata"`
}

// Block is a round-based list of exercises (core and accessories)
type Block struct {
	Rounds    *int       `json:"rondas,omitempty" validate:"omitempty,min=1"`
	Exercises []Exercise `json:"ejercicios" validate:"dive"`
}

// PrimaryBlock is the strength or olympic lifting block of the day
type PrimaryBlock struct {
	Type            string     `json:"tipo" validate:"required,oneof=FUERZA OLY"`
	Description     string     `json:"descripcion,omitempty"`
	Movement        string     `json:"movimiento,omitempty"`
	Sets            *int       `json:"sets,omitempty" validate:"omitempty,min=1"`
	Reps            FlexString `json:"reps,omitempty"`
	BeginnerVariant string     `json:"variante_principiante,omitempty"`
}

// WOD is the high-intensity block. Duration, Rounds and TimeCap are mutually optional.
type WOD struct {
	Format    string     `json:"formato" validate:"required,wodformat"`
	Duration  *int       `json:"duracion,omitempty" validate:"omitempty,min=1"`
	Rounds    *int       `json:"rondas,omitempty" validate:"omitempty,min=1"`
	TimeCap   *int       `json:"time_cap,omitempty" validate:"omitempty,min=1"`
	Exercises []Exercise `json:"ejercicios" validate:"required,min=1,dive"`
}

// Exercise is a named movement with optional reps and a scaled alternative
type Exercise struct {
	Name  string     `json:"nombre" validate:"required"`
	Reps  FlexString `json:"reps,omitempty"`
	Scale string     `json:"escala,omitempty"`
}

// DayMetadata summarises what a day trains
type DayMetadata struct {
	MuscleGroups    []string `json:"grupos_musculares" validate:"required"`
	OlympicLifts    []string `json:"movimientos_olimpicos"`
	Intensity       string   `json:"intensidad_estimada" validate:"required,oneof=baja media media-alta alta"`
	StrengthPattern string   `json:"patron_movimiento_fuerza,omitempty"`
}

// DisplayDuration returns the WOD length label checking duration, then rounds, then time cap.
// Returns "" when none is set.
func (w WOD) DisplayDuration() string {
	switch {
	case w.Duration != nil && *w.Duration > 0:
		return fmt.Sprintf("%d'", *w.Duration)
	case w.Rounds != nil && *w.Rounds > 0:
		return fmt.Sprintf("%d rounds", *w.Rounds)
	case w.TimeCap != nil && *w.TimeCap > 0:
		return fmt.Sprintf("TC %d'", *w.TimeCap)
	}
	return ""
}

// Clone returns a deep copy of the routine
func (r *WeekRoutine) Clone() *WeekRoutine {
	if r == nil {
		return nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil
	}
	var out WeekRoutine
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return &out
}

// FlexString decodes from a JSON string or number. Models often emit reps as 12 instead of "12".
type FlexString string

// UnmarshalJSON accepts strings, numbers and null
func (f *FlexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*f = FlexString(str)
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("reps must be a string or number, got %s", s)
	}
	*f = FlexString(s)
	return nil
}

// String returns the raw value
func (f FlexString) String() string {
	return string(f)
}

// NextMonday returns the Monday after now as YYYY-MM-DD. On a Monday it returns the following one.
func NextMonday(now time.Time) string {
	days := (8 - int(now.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	return now.AddDate(0, 0, days).Format("2006-01-02")
}

// WeekIDFor returns the semana_YYYY_WNN identifier for the ISO week containing date
func WeekIDFor(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	year, week := t.ISOWeek()
	return fmt.Sprintf("semana_%d_W%02d", year, week), nil
}
