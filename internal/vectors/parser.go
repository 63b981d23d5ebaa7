// Package vectors loads known-answer test vectors from JSON or XML suite
// files and carries the built-in published vectors.
package vectors

import (
	"encoding/hex"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cipherlab/internal/crypto"
)

// suiteFile matches the JSON schema.
type suiteFile struct {
	Suites []jsonSuite `json:"suites"`
}

type jsonSuite struct {
	Name    string       `json:"name"`
	Cipher  string       `json:"cipher"`
	Rounds  int          `json:"rounds,omitempty"`
	Vectors []jsonVector `json:"vectors"`
}

type jsonVector struct {
	Name       string `json:"name"`
	Key        string `json:"key"`
	Plaintext  string `json:"plaintext"`
	Ciphertext string `json:"ciphertext,omitempty"`
}

// xmlVectorList matches the XML schema:
//
//	<VectorList>
//	  <Suite Name="fips-197" Cipher="aes" Rounds="10">
//	    <Vector Name="b" Key="..." Plaintext="..." Ciphertext="..."/>
//	  </Suite>
//	</VectorList>
type xmlVectorList struct {
	Suites []xmlSuite `xml:"Suite"`
}

type xmlSuite struct {
	Name    string      `xml:"Name,attr"`
	Cipher  string      `xml:"Cipher,attr"`
	Rounds  string      `xml:"Rounds,attr"`
	Vectors []xmlVector `xml:"Vector"`
}

type xmlVector struct {
	Name       string `xml:"Name,attr"`
	Key        string `xml:"Key,attr"`
	Plaintext  string `xml:"Plaintext,attr"`
	Ciphertext string `xml:"Ciphertext,attr"`
}

// Parse reads a suite file and returns its vectors in file order. Files
// ending in .xml use the XML schema, everything else is JSON.
func Parse(path string) ([]Vector, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vectors: read %s: %w", path, err)
	}

	var suites []jsonSuite
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		suites, err = decodeXML(raw)
	} else {
		suites, err = decodeJSON(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("vectors: parse %s: %w", path, err)
	}

	vecs, err := flatten(suites)
	if err != nil {
		return nil, fmt.Errorf("vectors: %s: %w", path, err)
	}
	return vecs, nil
}

func decodeJSON(raw []byte) ([]jsonSuite, error) {
	var f suiteFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return f.Suites, nil
}

// decodeXML maps the XML schema onto the JSON one so both share flatten.
func decodeXML(raw []byte) ([]jsonSuite, error) {
	var list xmlVectorList
	if err := xml.Unmarshal(raw, &list); err != nil {
		return nil, err
	}

	suites := make([]jsonSuite, 0, len(list.Suites))
	for _, s := range list.Suites {
		js := jsonSuite{Name: s.Name, Cipher: s.Cipher}
		if s.Rounds != "" {
			r, err := strconv.Atoi(s.Rounds)
			if err != nil {
				return nil, fmt.Errorf("suite %q: rounds: %w", s.Name, err)
			}
			js.Rounds = r
		}
		for _, v := range s.Vectors {
			js.Vectors = append(js.Vectors, jsonVector(v))
		}
		suites = append(suites, js)
	}
	return suites, nil
}

func flatten(suites []jsonSuite) ([]Vector, error) {
	var out []Vector
	for _, s := range suites {
		id, err := crypto.ParseID(s.Cipher)
		if err != nil {
			return nil, fmt.Errorf("suite %q: %w", s.Name, err)
		}
		if s.Rounds != 0 && id != crypto.AES128 {
			return nil, fmt.Errorf("suite %q: rounds only apply to AES",
				s.Name)
		}

		for i, v := range s.Vectors {
			name := v.Name
			if name == "" {
				name = strconv.Itoa(i)
			}

			vec := Vector{
				Suite:  s.Name,
				Cipher: id,
				Rounds: s.Rounds,
				Name:   name,
			}
			fields := []struct {
				label string
				src   string
				dst   *[]byte
			}{
				{"key", v.Key, &vec.Key},
				{"plaintext", v.Plaintext, &vec.Plaintext},
				{"ciphertext", v.Ciphertext, &vec.Ciphertext},
			}
			for _, f := range fields {
				if f.src == "" {
					continue
				}
				b, err := DecodeHex(f.src)
				if err != nil {
					return nil, fmt.Errorf("suite %q vector %q: %s: %w",
						s.Name, name, f.label, err)
				}
				*f.dst = b
			}
			out = append(out, vec)
		}
	}
	return out, nil
}

// DecodeHex decodes a hex string. It accepts an optional 0x prefix and
// ignores spaces.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	s = strings.ReplaceAll(s, " ", "")
	return hex.DecodeString(s)
}
