package ws

// request is the outbound message shape. Exactly one verb field is set per
// request; req_id correlates the response.
type request struct {
	ReqID int64 `json:"req_id"`

	Authorize string `json:"authorize,omitempty"`

	Ticks     string `json:"ticks,omitempty"`
	Subscribe int    `json:"subscribe,omitempty"`

	Buy        int            `json:"buy,omitempty"`
	Price      float64        `json:"price,omitempty"`
	Parameters *buyParameters `json:"parameters,omitempty"`

	Forget string `json:"forget,omitempty"`

	ProposalOpenContract int `json:"proposal_open_contract,omitempty"`
	Balance              int `json:"balance,omitempty"`
}

// buyParameters describes the contract to purchase.
type buyParameters struct {
	Amount       float64 `json:"amount"`
	Basis        string  `json:"basis"`
	ContractType string  `json:"contract_type"`
	Currency     string  `json:"currency"`
	Duration     int     `json:"duration"`
	DurationUnit string  `json:"duration_unit"`
	Symbol       string  `json:"symbol"`
	Barrier      *int    `json:"barrier,omitempty"`
}

// envelope is the inbound message shape. msg_type discriminates the payload;
// a non-nil error field rejects only the request it correlates with.
type envelope struct {
	ReqID   int64     `json:"req_id"`
	MsgType string    `json:"msg_type"`
	Error   *apiError `json:"error"`

	Subscription *subscriptionInfo `json:"subscription"`

	Authorize            *authorizeResult `json:"authorize"`
	Tick                 *tickResult      `json:"tick"`
	Buy                  *buyResult       `json:"buy"`
	ProposalOpenContract *contractResult  `json:"proposal_open_contract"`
	Balance              *balanceResult   `json:"balance"`
}

// subscriptionInfo carries the stream id needed to forget a subscription.
type subscriptionInfo struct {
	ID string `json:"id"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type authorizeResult struct {
	LoginID  string  `json:"loginid"`
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}

type tickResult struct {
	Symbol string  `json:"symbol"`
	Quote  float64 `json:"quote"`
	Epoch  int64   `json:"epoch"`
}

type buyResult struct {
	ContractID int64   `json:"contract_id"`
	BuyPrice   float64 `json:"buy_price"`
	Longcode   string  `json:"longcode"`
}

type contractResult struct {
	ContractID int64   `json:"contract_id"`
	Underlying string  `json:"underlying"`
	IsSold     int     `json:"is_sold"`
	Profit     float64 `json:"profit"`
	Payout     float64 `json:"payout"`
}

type balanceResult struct {
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}
