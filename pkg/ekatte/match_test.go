package ekatte_test

import (
	"testing"
	"time"

	"github.com/db-afk/GRAO-tables-processing/pkg/ekatte"
	"github.com/stretchr/testify/assert"
)

func name(end time.Time, parts ...string) ekatte.NameRecord {
	return ekatte.NameRecord{Parts: parts, Start: time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC), End: end}
}

func year(y int) time.Time {
	return time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC)
}

func TestMatch(t *testing.T) {
	key := ekatte.Key{Region: "ВАРНА", Municipality: "АВРЕН", Settlement: "ПЕТРОВО"}

	tests := []struct {
		name       string
		key        ekatte.Key
		candidates []ekatte.Candidate
		want       ekatte.Code
		found      bool
	}{
		{
			name: "single match",
			key:  key,
			candidates: []ekatte.Candidate{
				{Code: "56784", Names: []ekatte.NameRecord{name(ekatte.OpenEnd, "обл.Варна", "общ.Аврен", "с.Петрово")}},
				{Code: "61340", Names: []ekatte.NameRecord{name(ekatte.OpenEnd, "обл.Благоевград", "общ.Сандански", "с.Петрово")}},
			},
			want:  "56784",
			found: true,
		},
		{
			name: "latest validity wins",
			key:  key,
			candidates: []ekatte.Candidate{
				{Code: "99999", Names: []ekatte.NameRecord{name(year(1960), "обл.Варна", "общ.Аврен", "с.Петрово")}},
				{Code: "56784", Names: []ekatte.NameRecord{name(ekatte.OpenEnd, "обл.Варна", "общ.Аврен", "с.Петрово")}},
				{Code: "11111", Names: []ekatte.NameRecord{name(year(1970), "обл.Варна", "общ.Аврен", "с.Петрово")}},
			},
			want:  "56784",
			found: true,
		},
		{
			name: "tie goes to greater code",
			key:  key,
			candidates: []ekatte.Candidate{
				{Code: "20000", Names: []ekatte.NameRecord{name(year(1980), "обл.Варна", "общ.Аврен", "с.Петрово")}},
				{Code: "30000", Names: []ekatte.NameRecord{name(year(1980), "обл.Варна", "общ.Аврен", "с.Петрово")}},
			},
			want:  "30000",
			found: true,
		},
		{
			name: "settlement must equal tail",
			key:  key,
			candidates: []ekatte.Candidate{
				{Code: "1", Names: []ekatte.NameRecord{name(ekatte.OpenEnd, "обл.Варна", "общ.Аврен", "с.Петрово село")}},
			},
		},
		{
			name: "municipality substring",
			key:  ekatte.Key{Region: "ВАРНА", Municipality: "ВАРНА", Settlement: "ВАРНА"},
			candidates: []ekatte.Candidate{
				{Code: "10135", Names: []ekatte.NameRecord{name(ekatte.OpenEnd, "обл.Варна", "общ.Варна", "гр.Варна")}},
			},
			want:  "10135",
			found: true,
		},
		{
			name: "sofia region alias",
			key:  ekatte.Key{Region: "СОФИЙСКА", Municipality: "БОЖУРИЩЕ", Settlement: "ГОЛЯНОВЦИ"},
			candidates: []ekatte.Candidate{
				{Code: "15703", Names: []ekatte.NameRecord{name(ekatte.OpenEnd, "обл.София", "общ.Божурище", "с.Голяновци")}},
			},
			want:  "15703",
			found: true,
		},
		{
			name: "smolyan region alias",
			key:  ekatte.Key{Region: "СМОЛЯН", Municipality: "ДЕВИН", Settlement: "ЛЯСКОВО"},
			candidates: []ekatte.Candidate{
				{Code: "44063", Names: []ekatte.NameRecord{name(year(1980), "окр.Пловдивска", "общ.Девин", "с.Лясково")}},
			},
			want:  "44063",
			found: true,
		},
		{
			name: "pazardzhik region alias",
			key:  ekatte.Key{Region: "ПАЗАРДЖИК", Municipality: "ВЕЛИНГРАД", Settlement: "ДРАГИНОВО"},
			candidates: []ekatte.Candidate{
				{Code: "23491", Names: []ekatte.NameRecord{name(year(1950), "окр.Пазарджишки", "общ.Велинград", "с.Драгиново")}},
			},
			want:  "23491",
			found: true,
		},
		{
			name: "alias only for its trigger",
			key:  ekatte.Key{Region: "ВАРНА", Municipality: "ДЕВИН", Settlement: "ЛЯСКОВО"},
			candidates: []ekatte.Candidate{
				{Code: "44063", Names: []ekatte.NameRecord{name(year(1980), "окр.Пловдивска", "общ.Девин", "с.Лясково")}},
			},
		},
		{
			name: "short paths ignored",
			key:  key,
			candidates: []ekatte.Candidate{
				{Code: "1", Names: []ekatte.NameRecord{name(ekatte.OpenEnd, "общ.Аврен", "с.Петрово")}},
			},
		},
		{
			name: "no candidates",
			key:  key,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ekatte.Match(tt.key, tt.candidates)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKey(t *testing.T) {
	a := ekatte.Key{Region: "ВАРНА", Municipality: "АВРЕН", Settlement: "ПЕТРОВО"}
	b := ekatte.Key{Region: "ВАРНА", Municipality: "ВАРНА", Settlement: "ВАРНА"}
	assert.Equal(t, "ВАРНА/АВРЕН/ПЕТРОВО", a.String())
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.Equal(t, "СТЕФАНО", ekatte.QueryFragment("САН-СТЕФАНО"))
	assert.Equal(t, "ПЕТРОВО", ekatte.QueryFragment("ПЕТРОВО"))
}
