package report

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// hashContent is the canonical shape fed to the digest. The field set and
// order are fixed: adding or reordering fields changes every stored
// fingerprint and invalidates every cached document. Fields outside this
// list (pdf bookkeeping columns, step counters) intentionally never
// affect the result.
type hashContent struct {
	AccidentTime           *time.Time       `json:"accidentTime"`
	OtherPartyInfo         *string          `json:"otherPartyInfo"`
	Status                 string           `json:"status"`
	PartyAName             *string          `json:"partyAName"`
	PartyAPhone            *string          `json:"partyAPhone"`
	PartyAIDCard           *string          `json:"partyAIdCard"`
	PartyALicenseNumber    *string          `json:"partyALicenseNumber"`
	PartyAVehicleNumber    *string          `json:"partyAVehicleNumber"`
	PartyAInsuranceCompany *string          `json:"partyAInsuranceCompany"`
	PartyBName             *string          `json:"partyBName"`
	PartyBPhone            *string          `json:"partyBPhone"`
	PartyBIDCard           *string          `json:"partyBIdCard"`
	PartyBLicenseNumber    *string          `json:"partyBLicenseNumber"`
	PartyBVehicleNumber    *string          `json:"partyBVehicleNumber"`
	PartyBInsuranceCompany *string          `json:"partyBInsuranceCompany"`
	Responsibility         *string          `json:"responsibility"`
	PartyASignature        *string          `json:"partyASignature"`
	PartyBSignature        *string          `json:"partyBSignature"`
	Latitude               *decimal.Decimal `json:"latitude"`
	Longitude              *decimal.Decimal `json:"longitude"`
	Photos                 []hashPhoto      `json:"photos"`
}

type hashPhoto struct {
	PhotoType string  `json:"photoType"`
	Caption   *string `json:"caption"`
	ImageURL  string  `json:"imageUrl"`
}

// Fingerprint computes the content hash used as the cache key for
// generated documents: md5 over the deterministic JSON serialization of
// the canonical field list. Structurally equal inputs always produce the
// same hex string.
func Fingerprint(r *Report, photos []Photo) string {
	content := hashContent{
		AccidentTime:           r.AccidentTime,
		OtherPartyInfo:         r.OtherPartyInfo,
		Status:                 r.Status,
		PartyAName:             r.PartyA.Name,
		PartyAPhone:            r.PartyA.Phone,
		PartyAIDCard:           r.PartyA.IDCard,
		PartyALicenseNumber:    r.PartyA.LicenseNumber,
		PartyAVehicleNumber:    r.PartyA.VehicleNumber,
		PartyAInsuranceCompany: r.PartyA.InsuranceCompany,
		PartyBName:             r.PartyB.Name,
		PartyBPhone:            r.PartyB.Phone,
		PartyBIDCard:           r.PartyB.IDCard,
		PartyBLicenseNumber:    r.PartyB.LicenseNumber,
		PartyBVehicleNumber:    r.PartyB.VehicleNumber,
		PartyBInsuranceCompany: r.PartyB.InsuranceCompany,
		Responsibility:         r.Responsibility,
		PartyASignature:        r.PartyASignature,
		PartyBSignature:        r.PartyBSignature,
		Latitude:               r.Latitude,
		Longitude:              r.Longitude,
		Photos:                 make([]hashPhoto, 0, len(photos)),
	}
	for _, p := range photos {
		content.Photos = append(content.Photos, hashPhoto{
			PhotoType: p.PhotoType,
			Caption:   p.Caption,
			ImageURL:  p.ImageURL,
		})
	}
	// Marshaling a struct of scalar fields cannot fail.
	data, _ := json.Marshal(content)
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
