package domain

import "math"

// BidAsk 在标记价格上叠加风险溢价得到双边报价，结果不低于 0
func BidAsk(markPrice, rateBuy, rateSell float64) (bid, ask float64) {
	ask = math.Max(markPrice*(1+rateBuy), 0)
	bid = math.Max(markPrice*(1-rateSell), 0)
	return bid, ask
}
