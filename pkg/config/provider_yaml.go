package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	if y.config != nil {
		return y.config, nil
	}

	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseYAML(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", y.filename, err)
	}

	y.config = config
	return config, nil
}

// ParseYAML converts a YAML document to ConfigData and applies defaults
func ParseYAML(data []byte) (*ConfigData, error) {
	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Engine      EngineYAML       `yaml:"engine,omitempty"`
		Inputs      InputsYAML       `yaml:"inputs,omitempty"`
		Output      OutputYAML       `yaml:"output,omitempty"`
		Archive     ArchiveYAML      `yaml:"archive,omitempty"`
		RESTServer  RESTServerYAML   `yaml:"rest,omitempty"`
		TimescaleDB *TimescaleDBYAML `yaml:"timescaledb,omitempty"`
		Lunar       LunarYAML        `yaml:"lunar,omitempty"`
	}

	if err := yaml.UnmarshalStrict(data, &yamlConfig); err != nil {
		return nil, err
	}

	// Convert to our internal format
	e := yamlConfig.Engine
	config := &ConfigData{
		Engine: EngineData{
			FilterStrategy:          e.FilterStrategy,
			SamplingIntervalMinutes: e.SamplingIntervalMinutes,
			BandLowPeriodHours:      e.BandLowPeriodHours,
			BandHighPeriodHours:     e.BandHighPeriodHours,
			WindowSize:              e.WindowSize,
			PolyOrder:               e.PolyOrder,
			MinExtremaSpacing:       e.MinExtremaSpacing,
			TroughFloor:             e.TroughFloor,
			NoExtremumLabel:         e.NoExtremumLabel,
			PlateauPeaks:            e.PlateauPeaks,
			CadencePolicy:           e.CadencePolicy,
			CadenceTolerance:        e.CadenceTolerance,
			StatisticsChannel:       e.StatisticsChannel,
		},
		Inputs: InputsData{
			Sheet:       yamlConfig.Inputs.Sheet,
			HeaderRow:   yamlConfig.Inputs.HeaderRow,
			TimeColumn:  yamlConfig.Inputs.TimeColumn,
			ValueColumn: yamlConfig.Inputs.ValueColumn,
			TimeFormat:  yamlConfig.Inputs.TimeFormat,
			Location:    yamlConfig.Inputs.Location,
		},
		Output: OutputData{
			XLSXPath:        yamlConfig.Output.XLSXPath,
			CSVPath:         yamlConfig.Output.CSVPath,
			DataSheet:       yamlConfig.Output.DataSheet,
			StatisticsSheet: yamlConfig.Output.StatisticsSheet,
		},
		Archive: ArchiveData{
			Path: yamlConfig.Archive.Path,
		},
		Lunar: LunarData{
			Enabled:          yamlConfig.Lunar.Enabled,
			RegimeWindowDays: yamlConfig.Lunar.RegimeWindowDays,
		},
		RESTServer: RESTServerData{
			Cert:       yamlConfig.RESTServer.Cert,
			Key:        yamlConfig.RESTServer.Key,
			Port:       yamlConfig.RESTServer.Port,
			ListenAddr: yamlConfig.RESTServer.ListenAddr,
		},
	}

	if e.UnitConversion != nil {
		config.Engine.UnitConversion = &ConversionData{
			Scale:  e.UnitConversion.Scale,
			Offset: e.UnitConversion.Offset,
		}
	}

	if yamlConfig.TimescaleDB != nil {
		config.TimescaleDB = &TimescaleDBData{
			ConnectionString: yamlConfig.TimescaleDB.ConnectionString,
			Table:            yamlConfig.TimescaleDB.Table,
			TimeColumn:       yamlConfig.TimescaleDB.TimeColumn,
			ValueColumn:      yamlConfig.TimescaleDB.ValueColumn,
			StationColumn:    yamlConfig.TimescaleDB.StationColumn,
			Station:          yamlConfig.TimescaleDB.Station,
			Start:            yamlConfig.TimescaleDB.Start,
			End:              yamlConfig.TimescaleDB.End,
		}
	}

	config.ApplyDefaults()
	return config, nil
}

// IsReadOnly returns true since YAML files are read-only in this implementation
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with YAML tags

type EngineYAML struct {
	FilterStrategy          string              `yaml:"filter_strategy,omitempty"`
	SamplingIntervalMinutes float64             `yaml:"sampling_interval_minutes,omitempty"`
	BandLowPeriodHours      float64             `yaml:"band_low_period_hours,omitempty"`
	BandHighPeriodHours     float64             `yaml:"band_high_period_hours,omitempty"`
	WindowSize              *int                `yaml:"window_size,omitempty"`
	PolyOrder               *int                `yaml:"poly_order,omitempty"`
	MinExtremaSpacing       *int                `yaml:"min_extrema_spacing_samples,omitempty"`
	TroughFloor             *float64            `yaml:"trough_floor,omitempty"`
	UnitConversion          *UnitConversionYAML `yaml:"unit_conversion,omitempty"`
	NoExtremumLabel         *string             `yaml:"no_extremum_label,omitempty"`
	PlateauPeaks            bool                `yaml:"plateau_peaks,omitempty"`
	CadencePolicy           string              `yaml:"cadence_policy,omitempty"`
	CadenceTolerance        *float64            `yaml:"cadence_tolerance,omitempty"`
	StatisticsChannel       string              `yaml:"statistics_channel,omitempty"`
}

type UnitConversionYAML struct {
	Scale  float64 `yaml:"scale"`
	Offset float64 `yaml:"offset"`
}

type InputsYAML struct {
	Sheet       string `yaml:"sheet,omitempty"`
	HeaderRow   int    `yaml:"header_row,omitempty"`
	TimeColumn  string `yaml:"time_column,omitempty"`
	ValueColumn string `yaml:"value_column,omitempty"`
	TimeFormat  string `yaml:"time_format,omitempty"`
	Location    string `yaml:"location,omitempty"`
}

type OutputYAML struct {
	XLSXPath        string `yaml:"xlsx_path,omitempty"`
	CSVPath         string `yaml:"csv_path,omitempty"`
	DataSheet       string `yaml:"data_sheet,omitempty"`
	StatisticsSheet string `yaml:"statistics_sheet,omitempty"`
}

type ArchiveYAML struct {
	Path string `yaml:"path,omitempty"`
}

type RESTServerYAML struct {
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	ListenAddr string `yaml:"listen_addr,omitempty"`
}

type TimescaleDBYAML struct {
	ConnectionString string `yaml:"connection_string"`
	Table            string `yaml:"table,omitempty"`
	TimeColumn       string `yaml:"time_column,omitempty"`
	ValueColumn      string `yaml:"value_column,omitempty"`
	StationColumn    string `yaml:"station_column,omitempty"`
	Station          string `yaml:"station,omitempty"`
	Start            string `yaml:"start,omitempty"`
	End              string `yaml:"end,omitempty"`
}

type LunarYAML struct {
	Enabled          bool    `yaml:"enabled,omitempty"`
	RegimeWindowDays float64 `yaml:"regime_window_days,omitempty"`
}
