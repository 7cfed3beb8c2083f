package domain

import "math"

// 累积正态分布有理多项式近似系数，误差 < 1e-7
const (
	cdfP  = 0.2316419
	cdfA1 = 0.31938153
	cdfA2 = -0.356563782
	cdfA3 = 1.781477937
	cdfA4 = -1.821255978
	cdfA5 = 1.330274429
)

var invSqrt2Pi = 1 / math.Sqrt(2*math.Pi)

// NormPDF 标准正态分布概率密度函数
func NormPDF(x float64) float64 {
	return invSqrt2Pi * math.Exp(-0.5*x*x)
}

// NormCDF 标准正态分布累积分布函数（Abramowitz-Stegun 近似），x < 0 时取镜像
func NormCDF(x float64) float64 {
	k := 1 / (1 + cdfP*math.Abs(x))
	tail := NormPDF(x) * k * (cdfA1 + k*(cdfA2+k*(cdfA3+k*(cdfA4+k*cdfA5))))
	if x >= 0 {
		return 1 - tail
	}
	return tail
}
