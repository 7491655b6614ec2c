package clgeo

import (
	"net/netip"

	"github.com/oschwald/geoip2-golang/v2"
	"github.com/rs/zerolog/log"
)

// Resolver résout le pays d'une IP cliente avant son anonymisation.
// Seul le code pays ISO est conservé, jamais l'IP brute.
type Resolver struct {
	reader *geoip2.Reader
}

// New ouvre la base MaxMind. Un chemin vide désactive la résolution,
// Country retournera alors toujours une chaîne vide.
func New(path string) *Resolver {
	if path == "" {
		return &Resolver{}
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("GeoIP désactivé, base illisible")
		return &Resolver{}
	}

	log.Info().Str("path", path).Msg("Base GeoIP chargée")
	return &Resolver{reader: reader}
}

// Country retourne le code pays ISO 3166-1 de l'IP, ou "" si
// la base est absente ou l'IP invalide
func (g *Resolver) Country(clientIP string) string {
	if g == nil || g.reader == nil {
		return ""
	}

	addr, err := netip.ParseAddr(clientIP)
	if err != nil {
		return ""
	}

	record, err := g.reader.Country(addr)
	if err != nil || record == nil {
		return ""
	}

	return record.Country.ISOCode
}

func (g *Resolver) Close() {
	if g.reader != nil {
		g.reader.Close()
	}
}
