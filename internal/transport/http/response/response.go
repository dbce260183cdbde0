package response

// Resp is the envelope of every JSON body the servers write.
type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New never leaves data as null.
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Message is a success carrying a confirmation text, e.g. "User created successfully!".
func Message(msg string, data interface{}) Resp {
	return New(CodeOK, msg, data)
}

// Error uses the default text for code when customMsg is empty.
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// Invalid is a 400 that lists the offending fields in data.
func Invalid(msg string, fields interface{}) Resp {
	if msg == "" {
		msg = CodeMsgMap[CodeBadRequest]
	}
	return New(CodeBadRequest, msg, fields)
}
