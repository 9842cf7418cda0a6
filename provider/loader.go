package provider

import (
	"fmt"

	"github.com/spf13/viper"
)

/*
LoadFile reads a provider table from a config file (YAML, JSON or TOML, by extension):

	providers:
	  - name: Cobalt
	    endpoint: https://api.cobalt.tools/api/json
	    method: POST
	    body: json
	    params:
	      - name: url
	        value: "{raw_url}"
	    platforms: [universal]

Order in the file is priority order. Header names are case-insensitive, but param names
are kept as written, which is why params are a list and not a map.
*/
func LoadFile(path string) ([]Spec, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading provider file: %w", err)
	}

	var specs []Spec
	if err := v.UnmarshalKey("providers", &specs); err != nil {
		return nil, fmt.Errorf("error decoding provider file: %w", err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("provider file %s defines no providers", path)
	}
	return specs, nil
}
