package config

import "strings"

// Riot API base URLs per routing value / platform.
var defaultRegionHosts = map[string]string{
	"americas": "https://americas.api.riotgames.com",
	"asia":     "https://asia.api.riotgames.com",
	"europe":   "https://europe.api.riotgames.com",
	"br1":      "https://br1.api.riotgames.com",
	"na1":      "https://na1.api.riotgames.com",
	"lan1":     "https://la1.api.riotgames.com",
	"las1":     "https://la2.api.riotgames.com",
	"euw1":     "https://euw1.api.riotgames.com",
	"eun1":     "https://eun1.api.riotgames.com",
	"kr":       "https://kr.api.riotgames.com",
}

// RegionHosts merges configured overrides on top of the built-in table.
// The returned map is a fresh copy.
func (c *Config) RegionHosts() map[string]string {
	out := make(map[string]string, len(defaultRegionHosts)+len(c.Riot.Hosts))
	for k, v := range defaultRegionHosts {
		out[k] = v
	}
	for k, v := range c.Riot.Hosts {
		out[strings.ToLower(k)] = strings.TrimRight(v, "/")
	}
	return out
}
