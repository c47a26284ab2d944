package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file looked up without an explicit --config.
const configName = ".futurec-lsp"

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("FUTUREC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Could not read config file %s: %v\n", cfgFile, err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("maxProblems", 100)
	v.SetDefault("trace", "off")
	v.SetDefault("diagnoseOnOpen", true)
	v.SetDefault("extensions", []string{".cpp", ".txt", ".fc"})
}

// settings converts the viper configuration to the shape of a
// workspace/didChangeConfiguration settings object.
func settings(v *viper.Viper) map[string]any {
	out := map[string]any{
		"maxProblems":    float64(v.GetInt("maxProblems")),
		"trace":          v.GetString("trace"),
		"diagnoseOnOpen": v.GetBool("diagnoseOnOpen"),
	}

	var extensions []any
	for _, e := range v.GetStringSlice("extensions") {
		extensions = append(extensions, e)
	}
	if len(extensions) > 0 {
		out["extensions"] = extensions
	}

	if path := v.GetString("builtins"); path != "" {
		out["builtins"] = path
	}

	return out
}
