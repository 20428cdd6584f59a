package catalog

import (
	"encoding/hex"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/tweakctl/tweakctl/internal/winres"
)

// registryChangeDoc is the YAML wire shape of a RegistryChange. The typed
// data field is decoded according to the declared value type, so a dword
// of 1 and a string of "1" stay distinct.
type registryChangeDoc struct {
	Hive   winres.Hive      `yaml:"hive"`
	Key    string           `yaml:"key"`
	Name   string           `yaml:"value"`
	Kind   winres.ValueKind `yaml:"type"`
	Data   yaml.Node        `yaml:"data"`
	Absent bool             `yaml:"absent"`
	OS     []string         `yaml:"os"`
}

// UnmarshalYAML decodes a registry change, resolving the data node into a
// typed winres.Value based on the declared type.
func (c *RegistryChange) UnmarshalYAML(node *yaml.Node) error {
	var doc registryChangeDoc
	if err := node.Decode(&doc); err != nil {
		return err
	}

	c.Hive = doc.Hive
	c.Key = doc.Key
	c.Name = doc.Name
	c.Absent = doc.Absent
	c.OS = doc.OS

	if doc.Absent {
		// Target state is "value removed"; no data to decode. The kind is
		// still recorded when given so the detector can report it.
		c.Value = winres.Value{Kind: doc.Kind}
		return nil
	}

	if doc.Data.IsZero() {
		return errors.Newf("registry change %s: data is required unless absent is set", c.Ref())
	}

	switch doc.Kind {
	case winres.KindString:
		var s string
		if err := doc.Data.Decode(&s); err != nil {
			return errors.Wrapf(err, "registry change %s: sz data", c.Ref())
		}
		c.Value = winres.StringValue(s)
	case winres.KindExpandString:
		var s string
		if err := doc.Data.Decode(&s); err != nil {
			return errors.Wrapf(err, "registry change %s: expand_sz data", c.Ref())
		}
		c.Value = winres.ExpandStringValue(s)
	case winres.KindMultiString:
		var ss []string
		if err := doc.Data.Decode(&ss); err != nil {
			return errors.Wrapf(err, "registry change %s: multi_sz data", c.Ref())
		}
		c.Value = winres.MultiStringValue(ss...)
	case winres.KindDword:
		var n uint32
		if err := doc.Data.Decode(&n); err != nil {
			return errors.Wrapf(err, "registry change %s: dword data", c.Ref())
		}
		c.Value = winres.DwordValue(n)
	case winres.KindQword:
		var n uint64
		if err := doc.Data.Decode(&n); err != nil {
			return errors.Wrapf(err, "registry change %s: qword data", c.Ref())
		}
		c.Value = winres.QwordValue(n)
	case winres.KindBinary:
		var s string
		if err := doc.Data.Decode(&s); err != nil {
			return errors.Wrapf(err, "registry change %s: binary data", c.Ref())
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return errors.Wrapf(err, "registry change %s: binary data is not hex", c.Ref())
		}
		c.Value = winres.BinaryValue(b)
	default:
		return errors.Newf("registry change %s: unknown value type %q", c.Ref(), doc.Kind)
	}

	return nil
}
