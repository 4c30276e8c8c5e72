package i18n

import (
    "strings"
    "testing"
)

func TestNegotiate(t *testing.T) {
    tests := []struct {
        name   string
        query  string
        accept string
        want   string
    }{
        {"default", "", "", English},
        {"query wins", "sw", "en-US,en;q=0.9", Swahili},
        {"accept swahili", "", "sw-TZ,sw;q=0.9,en;q=0.5", Swahili},
        {"accept english", "", "en-GB", English},
        {"unsupported falls back", "", "fr-FR", English},
        {"unknown query ignored", "de", "sw", Swahili},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            if got := Negotiate(tt.query, tt.accept); got != tt.want {
                t.Errorf("Negotiate(%q,%q) = %q; want %q", tt.query, tt.accept, got, tt.want)
            }
        })
    }
}

func TestT(t *testing.T) {
    if got := T(Swahili, "property_not_found"); got != "Nyumba haikupatikana" {
        t.Errorf("unexpected swahili text %q", got)
    }
    if got := T("fr", "property_not_found"); got != "Property not found" {
        t.Errorf("unexpected fallback text %q", got)
    }
    if got := T(English, "no_such_key"); got != "no_such_key" {
        t.Errorf("unknown key should be returned verbatim, got %q", got)
    }
    got := T(English, "notify.booking_approved.body", "Sea View Flat")
    if !strings.Contains(got, "Sea View Flat") {
        t.Errorf("args not applied: %q", got)
    }
}

func TestCatalogHasBothLanguages(t *testing.T) {
    for key, entry := range catalog {
        if entry[English] == "" || entry[Swahili] == "" {
            t.Errorf("key %q is missing a translation", key)
        }
        if strings.Count(entry[English], "%s") != strings.Count(entry[Swahili], "%s") {
            t.Errorf("key %q has mismatched placeholders", key)
        }
    }
}

func TestFormatTZS(t *testing.T) {
    if got := FormatTZS(450000); got != "TSh 450,000" {
        t.Errorf("FormatTZS = %q", got)
    }
    if got := FormatTZS(0); got != "TSh 0" {
        t.Errorf("FormatTZS(0) = %q", got)
    }
}

func TestNormalize(t *testing.T) {
    for in, want := range map[string]string{"SW": Swahili, "sw-TZ": Swahili, "": English, "en-US": English} {
        if got := Normalize(in); got != want {
            t.Errorf("Normalize(%q) = %q; want %q", in, got, want)
        }
    }
}
