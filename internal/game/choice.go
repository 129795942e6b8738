package game

// Choice 代表玩家的出拳
type Choice string

const (
	ChoiceRock     Choice = "rock"
	ChoicePaper    Choice = "paper"
	ChoiceScissors Choice = "scissors"
)

// choiceBeats 固定的勝負關係，key 勝過 value
var choiceBeats = map[Choice]Choice{
	ChoiceRock:     ChoiceScissors,
	ChoicePaper:    ChoiceRock,
	ChoiceScissors: ChoicePaper,
}

// Valid 檢查是否為合法出拳
func (c Choice) Valid() bool {
	_, ok := choiceBeats[c]
	return ok
}

// Outcome 定義單一回合的結果
type Outcome string

const (
	OutcomeHost  Outcome = "host"
	OutcomeGuest Outcome = "guest"
	OutcomeDraw  Outcome = "draw"
)

// Judge 比較雙方出拳並回傳回合結果，是不依賴任何外部狀態的純函數
func Judge(hostChoice, guestChoice Choice) Outcome {
	if hostChoice == guestChoice {
		return OutcomeDraw
	}
	if choiceBeats[hostChoice] == guestChoice {
		return OutcomeHost
	}
	return OutcomeGuest
}

// WinsNeeded 計算 best-of-N 賽制下獲勝所需的勝場數
func WinsNeeded(bestOf int) int {
	return bestOf/2 + 1
}

// ValidBestOf 檢查賽制設定是否合法
func ValidBestOf(bestOf int) bool {
	return bestOf == 1 || bestOf == 3 || bestOf == 5
}
