package clfingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gin-gonic/gin"
)

// Séparateur fixe entre les champs concaténés avant hachage
const separator = "|"

// UnknownIP remplace l'IP cliente quand aucun header ne la fournit.
// Choix délibéré de disponibilité : deux visiteurs sans IP partageant
// UA, domaine et projet entrent en collision, cardinalité jugée faible.
const UnknownIP = "unknown"

// SessionFingerprint dérive l'identifiant de session pseudonyme :
// sha256(ip|ua|domaine|projet) en hexadécimal. Pas de sel, le
// déterminisme entre visites est requis pour la déduplication 24h.
// La valeur reste pseudonyme, pas anonyme : un tuple (ip, ua, domaine)
// connu peut être vérifié par force brute.
func SessionFingerprint(clientIP, userAgent, domain, projectID string) string {
	if clientIP == "" {
		clientIP = UnknownIP
	}

	h := sha256.Sum256([]byte(clientIP + separator + userAgent + separator + domain + separator + projectID))
	return hex.EncodeToString(h[:])
}

// IPHash dérive sha256(ip|projet), stocké à la place de l'IP brute
// pour l'analyse d'abus
func IPHash(clientIP, projectID string) string {
	if clientIP == "" {
		clientIP = UnknownIP
	}

	h := sha256.Sum256([]byte(clientIP + separator + projectID))
	return hex.EncodeToString(h[:])
}

// ClientIP récupère l'IP réelle du client derrière les proxies
func ClientIP(c *gin.Context) string {
	// Vérifier les headers de proxy
	ip := c.GetHeader("X-Real-IP")
	if ip == "" {
		ip = c.GetHeader("X-Forwarded-For")
		if ip != "" {
			// Prendre la première IP si plusieurs
			ips := strings.Split(ip, ",")
			ip = strings.TrimSpace(ips[0])
		}
	}
	if ip == "" {
		ip = c.ClientIP()
	}
	return ip
}
