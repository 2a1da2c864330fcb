package config

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/pkg/errors"
	"github.com/tinyg-go/cncmotion/internal/vector"
)

func init() {
	// Register record types with gob once at startup.
	gob.Register(Record{})
	gob.Register(RecordSet{})
}

// recordVersionMarker is the mnemonic used for the leading/trailing
// schema marker records.
const recordVersionMarker Mnemonic = "P_"

// currentProfileVersion changes whenever the record layout below is no
// longer backward compatible with what's on disk.
const currentProfileVersion = 1.0

// Record is one persistent-storage record: a single axis/mnemonic
// setting with its value.
type Record struct {
	Axis     int8
	Mnemonic string
	Value    float64
}

// RecordSet is the linear array of records written to persistent storage,
// leading and trailing a version marker.
type RecordSet struct {
	Version float64
	Records []Record
}

// Encode serializes the store into a RecordSet using encoding/gob.
func (s *Store) Encode(w io.Writer) error {
	rs := RecordSet{Version: currentProfileVersion}
	rs.Records = append(rs.Records, Record{int8(vector.NonAxis), string(recordVersionMarker), currentProfileVersion})

	rs.Records = append(rs.Records,
		machineRecord(MnemMaxLinearJerk, s.Machine.MaxLinearJerk),
		machineRecord(MnemAngularJerkUp, s.Machine.AngularJerkUpper),
		machineRecord(MnemAngularJerkLow, s.Machine.AngularJerkLower),
		machineRecord(MnemMinSegmentTime, s.Machine.MinSegmentTimeUs),
		machineRecord(MnemMinSegmentLen, s.Machine.MinSegmentLenMM),
		machineRecord(MnemAccelEnable, boolToFloat(s.Machine.AccelEnabled)),
		machineRecord(MnemHomingModeToken, float64(s.Machine.HomingMode)),
		machineRecord(MnemPlane, float64(s.Machine.GCodePlane)),
		machineRecord(MnemUnits, float64(s.Machine.GCodeUnits)),
		machineRecord(MnemPathControl, float64(s.Machine.GCodePathControl)),
	)

	for i := 0; i < vector.Axes; i++ {
		a := s.Axes[i]
		ax := int8(i)
		rs.Records = append(rs.Records,
			Record{ax, string(MnemSeekRate), a.MaxSeekRate},
			Record{ax, string(MnemFeedRate), a.MaxFeedRate},
			Record{ax, string(MnemStepAngle), a.StepAngle},
			Record{ax, string(MnemMicrosteps), float64(a.Microsteps)},
			Record{ax, string(MnemTravelPerRev), a.TravelPerRev},
			Record{ax, string(MnemTravelMax), a.TravelMax},
			Record{ax, string(MnemHomingEnable), boolToFloat(a.HomingEnable)},
			Record{ax, string(MnemHomingRate), a.HomingRate},
			Record{ax, string(MnemHomingOffset), a.HomingOffset},
			Record{ax, string(MnemHomingBackoff), a.HomingBackoff},
		)
	}

	rs.Records = append(rs.Records, Record{int8(vector.NonAxis), string(recordVersionMarker), currentProfileVersion})

	return gob.NewEncoder(w).Encode(rs)
}

func machineRecord(m Mnemonic, v float64) Record {
	return Record{int8(vector.NonAxis), string(m), v}
}

// Decode reads a RecordSet written by Encode and applies every record in
// order. If the leading marker's version doesn't match
// currentProfileVersion, the entire store is rewritten from compiled
// defaults instead of being partially applied.
func Decode(r io.Reader) (*Store, error) {
	var rs RecordSet
	if err := gob.NewDecoder(r).Decode(&rs); err != nil {
		return nil, errors.Wrap(err, "decode config record set")
	}
	if len(rs.Records) == 0 || rs.Records[0].Mnemonic != string(recordVersionMarker) {
		return NewDefaultStore(), nil
	}
	if rs.Records[0].Value != currentProfileVersion {
		return NewDefaultStore(), nil
	}

	s := NewDefaultStore()
	for _, rec := range rs.Records {
		if rec.Mnemonic == string(recordVersionMarker) {
			continue
		}
		axis := vector.Axis(rec.Axis)
		if err := s.Set(axis, Mnemonic(rec.Mnemonic), rec.Value); err != nil {
			// Unknown mnemonics in an otherwise-valid store are skipped,
			// not fatal: a newer writer may have added fields an older
			// reader doesn't know about yet.
			continue
		}
	}
	return s, nil
}

// EncodeBytes/DecodeBytes are convenience wrappers for callers (tests, the
// $E CLI dump) that work with in-memory buffers instead of files.
func (s *Store) EncodeBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeBytes(data []byte) (*Store, error) {
	return Decode(bytes.NewReader(data))
}
