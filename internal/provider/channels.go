// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package provider

// CTChannels lists the channels served by the native schedule API.
var CTChannels = map[string]string{
	"ct1":  "ČT1",
	"ct2":  "ČT2",
	"ct24": "ČT24",
	"ct4":  "ČT sport",
	"ct5":  "ČT :D",
	"ct6":  "ČT art",
	"ct7":  "ČT3",
}

// XMLTVChannels lists the channels looked up in the XMLTV feed.
var XMLTVChannels = map[string]string{
	"prima":       "Prima",
	"prima-cool":  "Prima COOL",
	"prima-zoom":  "Prima ZOOM",
	"prima-max":   "Prima MAX",
	"prima-love":  "Prima LOVE",
	"prima-krimi": "Prima KRIMI",
	"prima-star":  "Prima STAR",
	"prima-show":  "Prima SHOW",
	"cnn-prima":   "CNN Prima NEWS",
	"nova":        "TV Nova",
	"nova-cinema": "Nova Cinema",
	"nova-action": "Nova Action",
	"nova-gold":   "Nova Gold",
	"nova-sport1": "Nova Sport 1",
	"nova-sport2": "Nova Sport 2",
}

// XMLTVChannelIDs maps short codes onto the channel ids used in the feed.
var XMLTVChannelIDs = map[string]string{
	"prima":       "prima.cz",
	"prima-cool":  "cool.iprima.cz",
	"prima-zoom":  "zoom.iprima.cz",
	"prima-max":   "max.iprima.cz",
	"prima-love":  "love.iprima.cz",
	"prima-krimi": "krimi.iprima.cz",
	"prima-star":  "star.iprima.cz",
	"prima-show":  "show.iprima.cz",
	"cnn-prima":   "cnn.iprima.cz",
	"nova":        "nova.cz",
	"nova-cinema": "cinema.nova.cz",
	"nova-action": "action.nova.cz",
	"nova-gold":   "gold.nova.cz",
	"nova-sport1": "sport1.nova.cz",
	"nova-sport2": "sport2.nova.cz",
}

// TranslateChannelID returns the feed channel id for a short code. Unknown
// codes pass through unchanged.
func TranslateChannelID(code string) string {
	if id, ok := XMLTVChannelIDs[code]; ok {
		return id
	}
	return code
}

func copyChannels(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
