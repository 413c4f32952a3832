package config

import (
	"github.com/chrissnell/remotetide/internal/tide"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Engine      EngineData       `json:"engine"`
	Inputs      InputsData       `json:"inputs"`
	Output      OutputData       `json:"output"`
	Archive     ArchiveData      `json:"archive,omitempty"`
	RESTServer  RESTServerData   `json:"rest,omitempty"`
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty"`
	Lunar       LunarData        `json:"lunar,omitempty"`
}

// EngineData holds the signal processing options. Pointer fields
// distinguish an explicit zero from an omitted value.
type EngineData struct {
	FilterStrategy          string          `json:"filter_strategy,omitempty"`
	SamplingIntervalMinutes float64         `json:"sampling_interval_minutes,omitempty"`
	BandLowPeriodHours      float64         `json:"band_low_period_hours,omitempty"`
	BandHighPeriodHours     float64         `json:"band_high_period_hours,omitempty"`
	WindowSize              *int            `json:"window_size,omitempty"`
	PolyOrder               *int            `json:"poly_order,omitempty"`
	MinExtremaSpacing       *int            `json:"min_extrema_spacing_samples,omitempty"`
	TroughFloor             *float64        `json:"trough_floor,omitempty"`
	UnitConversion          *ConversionData `json:"unit_conversion,omitempty"`
	NoExtremumLabel         *string         `json:"no_extremum_label,omitempty"`
	PlateauPeaks            bool            `json:"plateau_peaks,omitempty"`
	CadencePolicy           string          `json:"cadence_policy,omitempty"`
	CadenceTolerance        *float64        `json:"cadence_tolerance,omitempty"`
	StatisticsChannel       string          `json:"statistics_channel,omitempty"`
}

// ConversionData is the linear sensor-to-unit formula
type ConversionData struct {
	Scale  float64 `json:"scale"`
	Offset float64 `json:"offset"`
}

// InputsData maps spreadsheet and CSV columns to samples
type InputsData struct {
	Sheet       string `json:"sheet,omitempty"`
	HeaderRow   int    `json:"header_row,omitempty"`
	TimeColumn  string `json:"time_column,omitempty"`
	ValueColumn string `json:"value_column,omitempty"`
	TimeFormat  string `json:"time_format,omitempty"`
	Location    string `json:"location,omitempty"`
}

// OutputData names the exported files and sheets
type OutputData struct {
	XLSXPath        string `json:"xlsx_path,omitempty"`
	CSVPath         string `json:"csv_path,omitempty"`
	DataSheet       string `json:"data_sheet,omitempty"`
	StatisticsSheet string `json:"statistics_sheet,omitempty"`
}

type ArchiveData struct {
	Path string `json:"path,omitempty"`
}

type RESTServerData struct {
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	Port       int    `json:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty"`
}

// TimescaleDBData configures reading a tide gauge channel out of a
// TimescaleDB hypertable
type TimescaleDBData struct {
	ConnectionString string `json:"connection_string"`
	Table            string `json:"table,omitempty"`
	TimeColumn       string `json:"time_column,omitempty"`
	ValueColumn      string `json:"value_column,omitempty"`
	StationColumn    string `json:"station_column,omitempty"`
	Station          string `json:"station,omitempty"`
	Start            string `json:"start,omitempty"`
	End              string `json:"end,omitempty"`
}

// LunarData enables the moon phase and spring/neap rows of the
// statistics table
type LunarData struct {
	Enabled          bool    `json:"enabled,omitempty"`
	RegimeWindowDays float64 `json:"regime_window_days,omitempty"`
}

// Defaults for the input and output sections
const (
	DefaultSheet           = "R73157 RFCURRENT - Data"
	DefaultHeaderRow       = 7
	DefaultTimeColumn      = "Date"
	DefaultValueColumn     = "Current (mA)"
	DefaultXLSXPath        = "result.xlsx"
	DefaultDataSheet       = "Processed Data"
	DefaultStatisticsSheet = "Statistics"
	DefaultRESTPort        = 8080
	DefaultTimescaleTable  = "tide_readings"
	DefaultRegimeWindow    = 2.5
)

// ApplyDefaults fills every omitted option with its default
func (c *ConfigData) ApplyDefaults() {
	d := tide.DefaultConfig()
	e := &c.Engine

	if e.FilterStrategy == "" {
		e.FilterStrategy = string(d.Filter.Strategy)
	}
	if e.SamplingIntervalMinutes == 0 {
		e.SamplingIntervalMinutes = d.Filter.SamplingIntervalMinutes
	}
	if e.BandLowPeriodHours == 0 {
		e.BandLowPeriodHours = d.Filter.BandLowPeriodHours
	}
	if e.BandHighPeriodHours == 0 {
		e.BandHighPeriodHours = d.Filter.BandHighPeriodHours
	}
	if e.WindowSize == nil {
		window := d.Filter.WindowSize
		e.WindowSize = &window
	}
	if e.PolyOrder == nil {
		order := d.Filter.PolyOrder
		e.PolyOrder = &order
	}
	if e.MinExtremaSpacing == nil {
		spacing := d.MinExtremaSpacing
		e.MinExtremaSpacing = &spacing
	}
	if e.NoExtremumLabel == nil {
		label := d.NoExtremumLabel
		e.NoExtremumLabel = &label
	}
	if e.CadencePolicy == "" {
		e.CadencePolicy = string(d.CadencePolicy)
	}
	if e.CadenceTolerance == nil {
		tolerance := d.CadenceTolerance
		e.CadenceTolerance = &tolerance
	}
	if e.StatisticsChannel == "" {
		e.StatisticsChannel = string(d.StatisticsChannel)
	}

	if c.Inputs.Sheet == "" {
		c.Inputs.Sheet = DefaultSheet
	}
	if c.Inputs.HeaderRow == 0 {
		c.Inputs.HeaderRow = DefaultHeaderRow
	}
	if c.Inputs.TimeColumn == "" {
		c.Inputs.TimeColumn = DefaultTimeColumn
	}
	if c.Inputs.ValueColumn == "" {
		c.Inputs.ValueColumn = DefaultValueColumn
	}

	if c.Output.XLSXPath == "" && c.Output.CSVPath == "" {
		c.Output.XLSXPath = DefaultXLSXPath
	}
	if c.Output.DataSheet == "" {
		c.Output.DataSheet = DefaultDataSheet
	}
	if c.Output.StatisticsSheet == "" {
		c.Output.StatisticsSheet = DefaultStatisticsSheet
	}

	if c.RESTServer.Port == 0 {
		c.RESTServer.Port = DefaultRESTPort
	}

	if c.Lunar.RegimeWindowDays == 0 {
		c.Lunar.RegimeWindowDays = DefaultRegimeWindow
	}

	if c.TimescaleDB != nil && c.TimescaleDB.Table == "" {
		c.TimescaleDB.Table = DefaultTimescaleTable
	}
}

// EngineConfig maps the engine section onto the pipeline configuration.
// Options left unset fall back to tide.DefaultConfig.
func (c *ConfigData) EngineConfig() tide.Config {
	cfg := tide.DefaultConfig()
	e := c.Engine

	if e.FilterStrategy != "" {
		cfg.Filter.Strategy = tide.FilterType(e.FilterStrategy)
	}
	if e.SamplingIntervalMinutes != 0 {
		cfg.Filter.SamplingIntervalMinutes = e.SamplingIntervalMinutes
	}
	if e.BandLowPeriodHours != 0 {
		cfg.Filter.BandLowPeriodHours = e.BandLowPeriodHours
	}
	if e.BandHighPeriodHours != 0 {
		cfg.Filter.BandHighPeriodHours = e.BandHighPeriodHours
	}
	if e.WindowSize != nil {
		cfg.Filter.WindowSize = *e.WindowSize
	}
	if e.PolyOrder != nil {
		cfg.Filter.PolyOrder = *e.PolyOrder
	}
	if e.MinExtremaSpacing != nil {
		cfg.MinExtremaSpacing = *e.MinExtremaSpacing
	}
	if e.TroughFloor != nil {
		cfg.TroughFloor = *e.TroughFloor
	}
	if e.UnitConversion != nil {
		cfg.Conversion = &tide.Converter{
			Scale:  e.UnitConversion.Scale,
			Offset: e.UnitConversion.Offset,
		}
	}
	if e.NoExtremumLabel != nil {
		cfg.NoExtremumLabel = *e.NoExtremumLabel
	}
	cfg.PlateauPeaks = e.PlateauPeaks
	if e.CadencePolicy != "" {
		cfg.CadencePolicy = tide.CadencePolicy(e.CadencePolicy)
	}
	if e.CadenceTolerance != nil {
		cfg.CadenceTolerance = *e.CadenceTolerance
	}
	if e.StatisticsChannel != "" {
		cfg.StatisticsChannel = tide.StatisticsChannel(e.StatisticsChannel)
	}

	return cfg
}
