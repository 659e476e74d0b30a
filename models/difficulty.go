package models

// Difficulty 문제 난이도 구분입니다
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
)

// DifficultyInfo 난이도별 표시 정보를 포함합니다
type DifficultyInfo struct {
	Difficulty Difficulty
	Name       string // 표시 이름
	ColorCode  int    // Discord embed 색상 코드
	ANSIColor  string // 터미널 표시용 ANSI 색상 코드
}

// ANSIReset ANSI 리셋 코드입니다
const ANSIReset = "\x1b[0m"

var difficulties = [...]DifficultyInfo{
	{DifficultyEasy, "Easy", 0x00B8A3, "\x1b[1;36m"},
	{DifficultyMedium, "Medium", 0xFFC01E, "\x1b[1;33m"},
	{DifficultyHard, "Hard", 0xFF375F, "\x1b[1;31m"},
}

// Difficulties 모든 난이도 정보를 쉬운 순서대로 반환합니다
func Difficulties() []DifficultyInfo {
	out := make([]DifficultyInfo, len(difficulties))
	copy(out, difficulties[:])
	return out
}

// Info 난이도의 표시 정보를 반환합니다
func (d Difficulty) Info() DifficultyInfo {
	if d < DifficultyEasy || d > DifficultyHard {
		return DifficultyInfo{Difficulty: d, Name: "Unknown", ColorCode: 0x36393F, ANSIColor: ANSIReset}
	}
	return difficulties[d]
}

func (d Difficulty) String() string {
	return d.Info().Name
}

// DifficultyCount 난이도별 해결 수입니다
type DifficultyCount struct {
	Difficulty string `json:"difficulty"`
	Solved     int    `json:"solved"`
}

// SolvedByDifficulty 프로필의 난이도별 해결 수를 쉬운 순서대로 반환합니다
func (p *UserProfile) SolvedByDifficulty() []DifficultyCount {
	counts := map[Difficulty]int{
		DifficultyEasy:   p.EasySolved,
		DifficultyMedium: p.MediumSolved,
		DifficultyHard:   p.HardSolved,
	}
	out := make([]DifficultyCount, 0, len(counts))
	for _, info := range difficulties {
		out = append(out, DifficultyCount{Difficulty: info.Name, Solved: counts[info.Difficulty]})
	}
	return out
}
