package availability

type BatchReq struct {
	Start    string        `json:"start" validate:"required"`
	End      string        `json:"end" validate:"required"`
	Serials  bool          `json:"serials"`
	Fresh    bool          `json:"fresh"`
	Entities []BatchEntity `json:"entities" validate:"required,min=1,max=200,dive"`
}

type BatchEntity struct {
	Type string `json:"type" validate:"required,oneof=product bundle"`
	ID   int64  `json:"id" validate:"required,gt=0"`
}
